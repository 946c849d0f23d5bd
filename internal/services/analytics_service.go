package services

import (
	"context"
	"fmt"

	"evspare/internal/models"
	"evspare/internal/repositories"
)

// AnalyticsService builds the admin dashboard summary.
type AnalyticsService struct {
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	products repositories.ProductRepository
}

func NewAnalyticsService(orders repositories.OrderRepository, users repositories.UserRepository, products repositories.ProductRepository) *AnalyticsService {
	return &AnalyticsService{orders: orders, users: users, products: products}
}

// Summary returns order statistics with customer and product counts. Admin only.
// Completed orders are the delivered ones; revenue sums every order.
func (s *AnalyticsService) Summary(ctx context.Context, actor *models.Session) (*models.Analytics, error) {
	if err := requireAdminActor(actor); err != nil {
		return nil, err
	}
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	customers, err := s.users.Count(ctx, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Analytics{
		OrderStats:     stats,
		TotalCustomers: customers,
		TotalProducts:  products,
	}, nil
}
