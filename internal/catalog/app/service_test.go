package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampos/tienda/internal/auth"
	"github.com/jmcampos/tienda/internal/catalog/adapters/memory"
	"github.com/jmcampos/tienda/internal/catalog/app"
	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

var (
	admin = auth.Identity{UserID: "admin-1", Username: "admin", IsAdmin: true}
	buyer = auth.Identity{UserID: "user-1", Username: "buyer"}
)

func newService() *app.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.NewService(memory.NewRepository(), memory.NewReviewRepository(), logger)
}

func seedCategory(t *testing.T, service *app.Service) *domain.Category {
	t.Helper()
	category, err := service.CreateCategory(context.Background(), admin, "Electronics", "electronics.png")
	require.NoError(t, err)
	return category
}

func seedProduct(t *testing.T, service *app.Service, categoryID string) *domain.Product {
	t.Helper()
	product, err := service.CreateProduct(context.Background(), admin, domain.ProductInput{
		Title:      "Headphones",
		CategoryID: categoryID,
		PriceCents: 4999,
	})
	require.NoError(t, err)
	return product
}

func TestCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin cannot create", func(t *testing.T) {
		service := newService()
		_, err := service.CreateCategory(ctx, buyer, "Electronics", "")
		assert.ErrorIs(t, err, ports.ErrForbidden)
	})

	t.Run("create then list", func(t *testing.T) {
		service := newService()
		seedCategory(t, service)

		categories, err := service.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, "Electronics", categories[0].Name)
	})

	t.Run("update requires admin", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)

		_, err := service.UpdateCategory(ctx, buyer, category.ID, "Gadgets", "")
		assert.ErrorIs(t, err, ports.ErrForbidden)

		updated, err := service.UpdateCategory(ctx, admin, category.ID, "Gadgets", "")
		require.NoError(t, err)
		assert.Equal(t, "Gadgets", updated.Name)
	})

	t.Run("delete unknown category", func(t *testing.T) {
		service := newService()
		_, err := service.DeleteCategory(ctx, admin, "missing")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})
}

func TestProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("create requires an existing category", func(t *testing.T) {
		service := newService()
		_, err := service.CreateProduct(ctx, admin, domain.ProductInput{
			Title:      "Headphones",
			CategoryID: "missing",
			PriceCents: 4999,
		})
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("non-admin cannot write", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)

		_, err := service.CreateProduct(ctx, buyer, domain.ProductInput{
			Title:      "Headphones",
			CategoryID: category.ID,
			PriceCents: 4999,
		})
		assert.ErrorIs(t, err, ports.ErrForbidden)
	})

	t.Run("listing hides deactivated products", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)
		product := seedProduct(t, service, category.ID)

		products, err := service.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)

		_, err = service.DeactivateProduct(ctx, admin, product.ID)
		require.NoError(t, err)

		products, err = service.ListProducts(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)

		// Still resolvable by id for historical order line items.
		details, err := service.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, details.IsActive)
	})

	t.Run("listing by category checks the category", func(t *testing.T) {
		service := newService()
		_, err := service.ListProductsByCategory(ctx, "missing")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("details include average rating", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)
		product := seedProduct(t, service, category.ID)

		_, err := service.CreateReview(ctx, buyer, product.ID, 4, "solid")
		require.NoError(t, err)
		_, err = service.CreateReview(ctx, admin, product.ID, 5, "great")
		require.NoError(t, err)

		details, err := service.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Len(t, details.Reviews, 2)
		assert.InDelta(t, 4.5, details.AverageRating, 0.001)
	})
}

func TestReviews(t *testing.T) {
	ctx := context.Background()

	t.Run("review requires an existing product", func(t *testing.T) {
		service := newService()
		_, err := service.CreateReview(ctx, buyer, "missing", 4, "")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("rating outside range is rejected", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)
		product := seedProduct(t, service, category.ID)

		_, err := service.CreateReview(ctx, buyer, product.ID, 5.5, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	})

	t.Run("author updates own review only", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)
		product := seedProduct(t, service, category.ID)

		review, err := service.CreateReview(ctx, buyer, product.ID, 3, "ok")
		require.NoError(t, err)

		updated, err := service.UpdateReview(ctx, buyer, review.ID, 4, "better than I thought")
		require.NoError(t, err)
		assert.Equal(t, 4.0, updated.Rating)

		other := auth.Identity{UserID: "user-2", Username: "other"}
		_, err = service.UpdateReview(ctx, other, review.ID, 1, "")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("delete allowed for author and admin", func(t *testing.T) {
		service := newService()
		category := seedCategory(t, service)
		product := seedProduct(t, service, category.ID)

		review, err := service.CreateReview(ctx, buyer, product.ID, 3, "ok")
		require.NoError(t, err)

		other := auth.Identity{UserID: "user-2", Username: "other"}
		err = service.DeleteReview(ctx, other, review.ID)
		assert.ErrorIs(t, err, ports.ErrForbidden)

		err = service.DeleteReview(ctx, admin, review.ID)
		require.NoError(t, err)

		_, err = service.GetReview(ctx, review.ID)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})
}
