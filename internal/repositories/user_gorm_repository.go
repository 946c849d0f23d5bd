package repositories

import (
	"context"
	"fmt"

	"evspare/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create inserts a new user. A duplicate email yields ErrDuplicateKey.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail retrieves a user by email regardless of status.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetActiveByEmail retrieves an active user by email.
func (r *GORMUserRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ? AND is_active = ?", email, true)
}

func (r *GORMUserRepository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Update applies the non-nil fields of update and re-reads the row.
func (r *GORMUserRepository) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	if !update.Empty() {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(update.Columns())
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update user %s: %w", id, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// List returns every user, newest first.
func (r *GORMUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (r *GORMUserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.updateColumn(ctx, "id = ?", id, "role", role)
}

// SetActive enables or disables a user's login.
func (r *GORMUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateColumn(ctx, "id = ?", id, "is_active", active)
}

// UpdatePasswordHashByEmail overwrites the stored credential for email.
func (r *GORMUserRepository) UpdatePasswordHashByEmail(ctx context.Context, email, hash string) error {
	return r.updateColumn(ctx, "email = ?", email, "password_hash", hash)
}

func (r *GORMUserRepository) updateColumn(ctx context.Context, where string, key any, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where(where, key).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of users with role, or all users when role is empty.
func (r *GORMUserRepository) Count(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
