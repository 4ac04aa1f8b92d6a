package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

// Repository is an in-memory catalog store used in unit tests and local runs.
type Repository struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
	products   map[string]domain.Product
}

func NewRepository() *Repository {
	return &Repository{
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
	}
}

func (r *Repository) CreateCategory(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = *category
	return nil
}

func (r *Repository) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	return &category, nil
}

func (r *Repository) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	return categories, nil
}

func (r *Repository) UpdateCategory(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return fmt.Errorf("category %s: %w", category.ID, ports.ErrNotFound)
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *Repository) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}
	delete(r.categories, id)
	return nil
}

func (r *Repository) CreateProduct(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *Repository) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
	}
	return &product, nil
}

func (r *Repository) ListActiveProducts(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	for _, product := range r.products {
		if product.IsActive {
			products = append(products, product)
		}
	}
	sortByCreation(products)

	return products, nil
}

func (r *Repository) ListProductsByCategory(_ context.Context, categoryID string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []domain.Product
	for _, product := range r.products {
		if product.CategoryID == categoryID {
			products = append(products, product)
		}
	}
	sortByCreation(products)

	return products, nil
}

func (r *Repository) UpdateProduct(_ context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
	}

	product.Title = in.Title
	product.Description = in.Description
	product.CategoryID = in.CategoryID
	product.PriceCents = in.PriceCents
	product.Images = in.Images
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product

	return &product, nil
}

func (r *Repository) DeactivateProduct(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
	}

	product.IsActive = false
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product

	return &product, nil
}

func sortByCreation(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}
