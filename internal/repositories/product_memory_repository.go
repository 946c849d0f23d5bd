package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"evspare/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Category filtering by slug is not supported; it has no category table.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MemoryProductRepository) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.SKU == product.SKU {
			return ErrDuplicateKey
		}
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) Related(_ context.Context, product *models.Product, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := []models.Product{}
	if product.CategoryID == "" {
		return list, nil
	}
	for _, p := range r.products {
		if p.CategoryID == product.CategoryID && p.ID != product.ID && p.IsActive {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *MemoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.products {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

// reserve takes quantities out of stock, all or nothing.
func (r *MemoryProductRepository) reserve(items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		p, ok := r.products[it.ProductID]
		if !ok {
			return ErrNotFound
		}
		if p.StockQuantity < it.Quantity {
			return ErrOutOfStock
		}
	}
	for _, it := range items {
		p := r.products[it.ProductID]
		p.StockQuantity -= it.Quantity
		r.products[it.ProductID] = p
	}
	return nil
}
