package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidProduct indicates a product payload that fails validation.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidRating indicates a review rating outside the accepted range.
	ErrInvalidRating = errors.New("invalid rating")
)

// Product is a catalog entry. An inactive product is hidden from listings
// but remains resolvable by id for historical order line items.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	PriceCents  int64     `json:"price_cents"`
	Images      []string  `json:"images"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Title       string
	Description string
	CategoryID  string
	PriceCents  int64
	Images      []string
}

func (in ProductInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if in.CategoryID == "" {
		return fmt.Errorf("%w: category id is required", ErrInvalidProduct)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}

// NewProduct creates an active product from a validated input.
func NewProduct(in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		PriceCents:  in.PriceCents,
		Images:      in.Images,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ProductDetails is a product joined with its reviews and their average rating.
type ProductDetails struct {
	Product
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
}
