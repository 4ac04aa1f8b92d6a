package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

// ReviewRepository implements the review port on PostgreSQL. Reads join the
// users table so each review carries its author's username.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.ProductID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

const reviewQuery = `
	SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, u.username
	FROM reviews r
	JOIN users u ON u.id = r.user_id
`

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := reviewQuery + ` WHERE r.id = $1`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("review %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("select review: %w", err)
	}

	return review, nil
}

func (r *ReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	return r.list(ctx, reviewQuery+` ORDER BY r.created_at DESC`)
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return r.list(ctx, reviewQuery+` WHERE r.product_id = $1 ORDER BY r.created_at DESC`, productID)
}

func (r *ReviewRepository) AverageRating(ctx context.Context, productID string) (float64, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE product_id = $1
	`

	var average float64
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&average); err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}

	return average, nil
}

// Update only touches rows owned by userID; a mismatch surfaces as not found,
// so callers cannot probe for other users' review ids.
func (r *ReviewRepository) Update(ctx context.Context, id, userID string, rating float64, comment string) (*domain.Review, error) {
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2
		WHERE id = $3 AND user_id = $4
	`

	tag, err := r.pool.Exec(ctx, query, rating, comment, id, userID)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("review %s: %w", id, ports.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, ports.ErrNotFound)
	}

	return nil
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}

	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.ProductID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.Username,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
