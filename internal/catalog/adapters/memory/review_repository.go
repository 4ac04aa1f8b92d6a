package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

// ReviewRepository is an in-memory review store used in unit tests.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]domain.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{reviews: make(map[string]domain.Review)}
}

func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[review.ID] = *review
	return nil
}

func (r *ReviewRepository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %s: %w", id, ports.ErrNotFound)
	}
	return &review, nil
}

func (r *ReviewRepository) List(_ context.Context) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]domain.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		reviews = append(reviews, review)
	}
	sortReviews(reviews)

	return reviews, nil
}

func (r *ReviewRepository) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reviews []domain.Review
	for _, review := range r.reviews {
		if review.ProductID == productID {
			reviews = append(reviews, review)
		}
	}
	sortReviews(reviews)

	return reviews, nil
}

func (r *ReviewRepository) AverageRating(_ context.Context, productID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	var count int
	for _, review := range r.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}

	return sum / float64(count), nil
}

func (r *ReviewRepository) Update(_ context.Context, id, userID string, rating float64, comment string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok || review.UserID != userID {
		return nil, fmt.Errorf("review %s: %w", id, ports.ErrNotFound)
	}

	review.Rating = rating
	review.Comment = comment
	r.reviews[id] = review

	return &review, nil
}

func (r *ReviewRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return fmt.Errorf("review %s: %w", id, ports.ErrNotFound)
	}
	delete(r.reviews, id)
	return nil
}

func sortReviews(reviews []domain.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
