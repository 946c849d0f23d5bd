package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"evspare/internal/models"
	"evspare/internal/repositories"
	"evspare/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultRelatedLimit is how many related products the catalog returns by default.
const DefaultRelatedLimit = 6

// ProductService handles the catalog: public browsing and admin maintenance.
// Admin methods do not check the caller; routes guard them.
type ProductService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	images     storage.ObjectStorage
	log        zerolog.Logger
}

// NewProductService creates a new ProductService. images may be nil, which
// disables uploads.
func NewProductService(products repositories.ProductRepository, categories repositories.CategoryRepository, images storage.ObjectStorage, log zerolog.Logger) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		images:     images,
		log:        log,
	}
}

// ListCategories returns all categories with their active product counts.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory adds a category. The slug must be unique.
func (s *ProductService) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	if category.Slug == "" || strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: name and slug are required", ErrValidation)
	}
	return repoErr(s.categories.Create(ctx, category), "create category")
}

// ListProducts returns active products, optionally narrowed to a category slug
// and a name/SKU search.
func (s *ProductService) ListProducts(ctx context.Context, categorySlug, search string) ([]models.Product, error) {
	return s.products.List(ctx, models.ProductFilter{
		CategorySlug: strings.TrimSpace(categorySlug),
		Search:       search,
		ActiveOnly:   true,
	})
}

// GetProduct returns an active product. Inactive products are not found.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "product "+id)
	}
	if !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// RelatedProducts returns up to limit other active products from the same category.
func (s *ProductService) RelatedProducts(ctx context.Context, id string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.products.Related(ctx, p, limit)
}

// ListAllProducts includes inactive products.
func (s *ProductService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx, models.ProductFilter{})
}

// CreateProduct adds a product. Unit defaults to PCS.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := checkProduct(product); err != nil {
		return err
	}
	product.ID = ""
	return repoErr(s.products.Create(ctx, product), "create product")
}

// UpdateProduct replaces the editable fields of product id.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	if err := checkProduct(product); err != nil {
		return err
	}
	product.ID = id
	return repoErr(s.products.Update(ctx, product), "update product "+id)
}

func checkProduct(p *models.Product) error {
	p.SKU = strings.TrimSpace(p.SKU)
	if strings.TrimSpace(p.Name) == "" || p.SKU == "" {
		return fmt.Errorf("%w: name and sku are required", ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if p.Unit == "" {
		p.Unit = "PCS"
	}
	return nil
}

// DeleteProduct removes product id.
// Products that have been ordered cannot be deleted.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if repositories.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: product has orders, deactivate it instead", ErrConflict)
	}
	return repoErr(err, "delete product "+id)
}

// ImagesEnabled reports whether UploadImage can work.
func (s *ProductService) ImagesEnabled() bool {
	return s.images != nil
}

// UploadImage stores an image for product id and points the product at it.
func (s *ProductService) UploadImage(ctx context.Context, id, filename, contentType string, size int64, r io.Reader) (*models.Product, error) {
	if s.images == nil {
		return nil, ErrStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %q is not an image", ErrValidation, contentType)
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "product "+id)
	}

	key := fmt.Sprintf("products/%s/%s%s", id, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	p.Image = s.images.URL(key)
	if err := s.products.Update(ctx, p); err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned image")
		}
		return nil, repoErr(err, "update product "+id)
	}
	s.log.Info().Str("product_id", id).Str("key", key).Msg("product image uploaded")
	return p, nil
}
