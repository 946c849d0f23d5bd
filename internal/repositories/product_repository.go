package repositories

import (
	"context"

	"evspare/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// Related returns active products sharing product's category, excluding product itself.
	Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	// List returns every category with the number of active products in it.
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
