package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"evspare/internal/models"
	"evspare/internal/repositories"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryUserRepository()

	u := &models.User{Email: "a@example.com", PasswordHash: "h", IsActive: true}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Email: "a@example.com"}), repositories.ErrDuplicateKey)

	name := "Ann"
	got, err := repo.Update(ctx, u.ID, models.UserUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	require.NoError(t, repo.SetActive(ctx, u.ID, false))
	_, err = repo.GetActiveByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.UpdatePasswordHashByEmail(ctx, "a@example.com", "h2"))
	stored, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h2", stored.PasswordHash)
}

func TestMemoryOrderRepository_ReservesStock(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	orders := repositories.NewMemoryOrderRepository(products)

	p := &models.Product{Name: "Brake Pad", SKU: "BRK-1", Price: 450, StockQuantity: 3, IsActive: true}
	require.NoError(t, products.Create(ctx, p))

	order := &models.Order{UserID: "u1", Status: models.OrderPending, TotalAmount: 900,
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 2, UnitPrice: 450, TotalPrice: 900}}}
	require.NoError(t, orders.Create(ctx, order))
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	err := orders.Create(ctx, &models.Order{UserID: "u1",
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 2}}})
	assert.ErrorIs(t, err, repositories.ErrOutOfStock)

	left, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left.StockQuantity)

	stats, err := orders.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.InDelta(t, 900.0, stats.TotalRevenue, 0.001)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, repositories.IsUniqueViolation(repositories.ErrDuplicateKey))
	assert.False(t, repositories.IsUniqueViolation(repositories.ErrNotFound))
	assert.False(t, repositories.IsUniqueViolation(nil))

	pgDup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, repositories.IsUniqueViolation(pgDup))
	assert.False(t, repositories.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, repositories.IsForeignKeyViolation(repositories.ErrReferenced))
	assert.False(t, repositories.IsForeignKeyViolation(repositories.ErrDuplicateKey))
	assert.False(t, repositories.IsForeignKeyViolation(nil))

	pgFK := fmt.Errorf("delete: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.True(t, repositories.IsForeignKeyViolation(pgFK))
	assert.True(t, repositories.IsForeignKeyViolation(fmt.Errorf("FOREIGN KEY constraint failed")))
	assert.False(t, repositories.IsForeignKeyViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
}
