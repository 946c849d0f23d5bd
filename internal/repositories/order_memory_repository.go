package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"evspare/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
// Stock is taken from the product repository it was built with.
type MemoryOrderRepository struct {
	orders   map[string]models.Order
	products *MemoryProductRepository
	mu       sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository(products *MemoryProductRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	if r.products != nil {
		if err := r.products.reserve(order.Items); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now
	r.orders[order.ID] = *order
	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *MemoryOrderRepository) List(_ context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

func (r *MemoryOrderRepository) list(match func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if match(o) {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}

func (r *MemoryOrderRepository) Stats(_ context.Context) (models.OrderStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats models.OrderStats
	for _, o := range r.orders {
		stats.TotalOrders++
		switch o.Status {
		case models.OrderPending:
			stats.PendingOrders++
		case models.OrderDelivered:
			stats.CompletedOrders++
		}
		stats.TotalRevenue += o.TotalAmount
	}
	return stats, nil
}

// MemorySettingsRepository is an in-memory implementation of SettingsRepository.
type MemorySettingsRepository struct {
	settings *models.StoreSettings
	mu       sync.RWMutex
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{}
}

func (r *MemorySettingsRepository) Get(_ context.Context) (*models.StoreSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, ErrNotFound
	}
	s := *r.settings
	return &s, nil
}

func (r *MemorySettingsRepository) Save(_ context.Context, settings *models.StoreSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *settings
	s.ID = models.SettingsID
	s.UpdatedAt = time.Now()
	r.settings = &s
	return nil
}
