package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

// Repository implements the catalog and review ports on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, image)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.Image)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	query := `
		SELECT id, name, image
		FROM categories
		WHERE id = $1
	`

	var category domain.Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.Image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("select category: %w", err)
	}

	return &category, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, image
		FROM categories
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Image); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $1, image = $2
		WHERE id = $3
	`

	tag, err := r.pool.Exec(ctx, query, category.Name, category.Image, category.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", category.ID, ports.ErrNotFound)
	}

	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	query := `DELETE FROM categories WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, ports.ErrNotFound)
	}

	return nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, title, description, category_id, price_cents, images, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Title,
		product.Description,
		product.CategoryID,
		product.PriceCents,
		product.Images,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

const productColumns = `id, title, description, category_id, price_cents, images, is_active, created_at, updated_at`

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

func (r *Repository) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY created_at DESC
	`

	return r.listProducts(ctx, query)
}

func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category_id = $1
		ORDER BY created_at DESC
	`

	return r.listProducts(ctx, query, categoryID)
}

func (r *Repository) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	query := `
		UPDATE products
		SET title = $1, description = $2, category_id = $3, price_cents = $4, images = $5, updated_at = $6
		WHERE id = $7
		RETURNING ` + productColumns

	product, err := scanProduct(r.pool.QueryRow(ctx, query,
		in.Title,
		in.Description,
		in.CategoryID,
		in.PriceCents,
		in.Images,
		time.Now().UTC(),
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func (r *Repository) DeactivateProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		UPDATE products
		SET is_active = FALSE, updated_at = $1
		WHERE id = $2
		RETURNING ` + productColumns

	product, err := scanProduct(r.pool.QueryRow(ctx, query, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("deactivate product: %w", err)
	}

	return product, nil
}

func (r *Repository) listProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.CategoryID,
		&product.PriceCents,
		&product.Images,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}
