package repositories

import (
	"context"

	"evspare/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetActiveByEmail only matches rows with is_active = true.
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	// Update applies a partial change and returns the row as stored afterwards.
	Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePasswordHashByEmail(ctx context.Context, email, hash string) error
	Count(ctx context.Context, role models.Role) (int64, error)
}
