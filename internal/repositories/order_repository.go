package repositories

import (
	"context"

	"evspare/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create stores the order and its items and takes the ordered quantities out of
	// stock in one step. ErrOutOfStock means nothing was written.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	Stats(ctx context.Context) (models.OrderStats, error)
}

// SettingsRepository stores the single store settings row.
type SettingsRepository interface {
	// Get returns ErrNotFound until settings have been saved once.
	Get(ctx context.Context) (*models.StoreSettings, error)
	Save(ctx context.Context, settings *models.StoreSettings) error
}
