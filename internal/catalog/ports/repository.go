package ports

import (
	"context"
	"errors"

	"github.com/jmcampos/tienda/internal/catalog/domain"
)

var (
	// ErrNotFound indicates a product, category or review id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates an action the caller is not allowed to perform.
	ErrForbidden = errors.New("forbidden")
)

// CatalogRepository persists products and categories.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListActiveProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id string) (*domain.Product, error)
}

// ReviewRepository persists product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
	Update(ctx context.Context, id, userID string, rating float64, comment string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
}
