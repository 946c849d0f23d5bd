package repositories

import (
	"context"
	"fmt"

	"evspare/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to reserve stock for %s: %w", it.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", it.ProductID, ErrOutOfStock)
			}
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", translate(err))
		}
		if len(order.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&order.Items).Error; err != nil {
				return fmt.Errorf("failed to create order items: %w", translate(err))
			}
		}
		return nil
	})
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("User").First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// List returns every order with its customer, newest first.
func (r *GORMOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("User").
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats counts orders by state. Revenue sums every order's total.
func (r *GORMOrderRepository) Stats(ctx context.Context) (models.OrderStats, error) {
	var stats models.OrderStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return stats, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderPending).Count(&stats.PendingOrders).Error; err != nil {
		return stats, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderDelivered).Count(&stats.CompletedOrders).Error; err != nil {
		return stats, fmt.Errorf("failed to count delivered orders: %w", err)
	}
	if err := db.Model(&models.Order{}).Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		return stats, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return stats, nil
}

// GORMSettingsRepository is a GORM implementation of SettingsRepository.
type GORMSettingsRepository struct {
	db *gorm.DB
}

// NewGORMSettingsRepository creates a new instance of GORMSettingsRepository.
func NewGORMSettingsRepository(db *gorm.DB) *GORMSettingsRepository {
	return &GORMSettingsRepository{db: db}
}

func (r *GORMSettingsRepository) Get(ctx context.Context) (*models.StoreSettings, error) {
	var s models.StoreSettings
	if err := r.db.WithContext(ctx).First(&s, "id = ?", models.SettingsID).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Save upserts the settings row.
func (r *GORMSettingsRepository) Save(ctx context.Context, settings *models.StoreSettings) error {
	settings.ID = models.SettingsID
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
