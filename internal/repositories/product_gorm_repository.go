package repositories

import (
	"context"
	"fmt"
	"strings"

	"evspare/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// List returns products matching filter, ordered by name.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")
	if filter.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if filter.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ?)", pattern, pattern)
	}

	var products []models.Product
	if err := q.Order("products.name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a product by ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// Create inserts a product. A duplicate SKU yields ErrDuplicateKey.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update saves every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("name", "sku", "description", "price", "unit", "image", "category_id", "stock_quantity", "is_active").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product by ID. A product that appears on any order yields
// ErrReferenced; deactivate it instead.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
			return fmt.Errorf("failed to check orders for product %s: %w", id, err)
		}
		if ordered > 0 {
			return fmt.Errorf("product %s is on %d order lines: %w", id, ordered, ErrReferenced)
		}

		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product %s: %w", id, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Related returns up to limit active products in the same category.
func (r *GORMProductRepository) Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	products := []models.Product{}
	if product.CategoryID == "" {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_active = ?", product.CategoryID, product.ID, true).
		Order("name").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}
	return products, nil
}

// Count returns the number of active products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var counts []struct {
		CategoryID string
		N          int64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category_id, COUNT(*) AS n").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products per category: %w", err)
	}

	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.CategoryID] = c.N
	}
	for i := range categories {
		categories[i].ProductCount = byID[categories[i].ID]
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", translate(err))
	}
	return nil
}
