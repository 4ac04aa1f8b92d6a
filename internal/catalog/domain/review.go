package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a product. Username is denormalized from the
// authoring user for read models.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReview(userID, productID string, rating float64, comment string) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}

	return &Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func ValidateRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 0 and 5, got %g", ErrInvalidRating, rating)
	}
	return nil
}
