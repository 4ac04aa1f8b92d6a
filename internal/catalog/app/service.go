package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmcampos/tienda/internal/auth"
	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

// Service exposes catalog browsing plus the admin-only write operations.
type Service struct {
	catalog ports.CatalogRepository
	reviews ports.ReviewRepository
	logger  *slog.Logger
}

func NewService(catalog ports.CatalogRepository, reviews ports.ReviewRepository, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		reviews: reviews,
		logger:  logger,
	}
}

// CreateCategory is admin-only.
func (s *Service) CreateCategory(ctx context.Context, identity auth.Identity, name, image string) (*domain.Category, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("create category: %w", ports.ErrForbidden)
	}

	category, err := domain.NewCategory(name, image)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.catalog.GetCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.ListCategories(ctx)
}

// UpdateCategory is admin-only.
func (s *Service) UpdateCategory(ctx context.Context, identity auth.Identity, id, name, image string) (*domain.Category, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("update category: %w", ports.ErrForbidden)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidCategory)
	}

	category, err := s.catalog.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Image = image

	if err := s.catalog.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// DeleteCategory is admin-only. Deleting a category cascades nothing: products
// keep their category reference and the delete fails while products point at it.
func (s *Service) DeleteCategory(ctx context.Context, identity auth.Identity, id string) (*domain.Category, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("delete category: %w", ports.ErrForbidden)
	}

	category, err := s.catalog.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.DeleteCategory(ctx, id); err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}

	return category, nil
}

// CreateProduct is admin-only and requires the referenced category to exist.
func (s *Service) CreateProduct(ctx context.Context, identity auth.Identity, in domain.ProductInput) (*domain.Product, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("create product: %w", ports.ErrForbidden)
	}

	product, err := domain.NewProduct(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.catalog.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, fmt.Errorf("category %s: %w", in.CategoryID, err)
	}

	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created", "product_id", product.ID, "title", product.Title)
	return product, nil
}

// GetProduct returns a product with its reviews and average rating. Inactive
// products stay resolvable so historical order line items keep a target.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.ProductDetails, error) {
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.withReviews(ctx, *product)
}

// ListProducts returns active products only, each with reviews and average rating.
func (s *Service) ListProducts(ctx context.Context) ([]domain.ProductDetails, error) {
	products, err := s.catalog.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	return s.detailsFor(ctx, products)
}

// ListProductsByCategory fails with ErrNotFound for an unknown category.
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.ProductDetails, error) {
	if _, err := s.catalog.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	products, err := s.catalog.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return s.detailsFor(ctx, products)
}

// UpdateProduct is admin-only and requires the new category to exist.
func (s *Service) UpdateProduct(ctx context.Context, identity auth.Identity, id string, in domain.ProductInput) (*domain.ProductDetails, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("update product: %w", ports.ErrForbidden)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.catalog.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, fmt.Errorf("category %s: %w", in.CategoryID, err)
	}

	product, err := s.catalog.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}

	return s.withReviews(ctx, *product)
}

// DeactivateProduct is admin-only. The product is hidden from listings, not deleted.
func (s *Service) DeactivateProduct(ctx context.Context, identity auth.Identity, id string) (*domain.Product, error) {
	if !identity.IsAdmin {
		return nil, fmt.Errorf("deactivate product: %w", ports.ErrForbidden)
	}

	product, err := s.catalog.DeactivateProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product deactivated", "product_id", id)
	return product, nil
}

func (s *Service) CreateReview(ctx context.Context, identity auth.Identity, productID string, rating float64, comment string) (*domain.Review, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("product %s: %w", productID, err)
	}

	review, err := domain.NewReview(identity.UserID, productID, rating, comment)
	if err != nil {
		return nil, err
	}
	review.Username = identity.Username

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	return review, nil
}

func (s *Service) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *Service) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return s.reviews.List(ctx)
}

// UpdateReview only touches reviews authored by the caller.
func (s *Service) UpdateReview(ctx context.Context, identity auth.Identity, id string, rating float64, comment string) (*domain.Review, error) {
	if err := domain.ValidateRating(rating); err != nil {
		return nil, err
	}

	return s.reviews.Update(ctx, id, identity.UserID, rating, comment)
}

// DeleteReview is allowed for the review's author and for admins.
func (s *Service) DeleteReview(ctx context.Context, identity auth.Identity, id string) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if review.UserID != identity.UserID && !identity.IsAdmin {
		return fmt.Errorf("delete review: %w", ports.ErrForbidden)
	}

	return s.reviews.Delete(ctx, id)
}

func (s *Service) detailsFor(ctx context.Context, products []domain.Product) ([]domain.ProductDetails, error) {
	details := make([]domain.ProductDetails, 0, len(products))
	for _, product := range products {
		d, err := s.withReviews(ctx, product)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func (s *Service) withReviews(ctx context.Context, product domain.Product) (*domain.ProductDetails, error) {
	reviews, err := s.reviews.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("reviews for product %s: %w", product.ID, err)
	}

	average, err := s.reviews.AverageRating(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("average rating for product %s: %w", product.ID, err)
	}

	return &domain.ProductDetails{
		Product:       product,
		Reviews:       reviews,
		AverageRating: average,
	}, nil
}
