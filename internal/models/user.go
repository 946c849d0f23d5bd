package models

import "time"

// Role gates what a user may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User represents a customer or administrator of the store.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"` // never serialized
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:customer"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(100)"`
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Address      *string   `json:"address,omitempty" gorm:"type:text"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate carries a partial profile change. Nil fields are left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	Address      *string
	PasswordHash *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Phone == nil && u.Address == nil && u.PasswordHash == nil
}

// Columns returns the changed columns keyed by their database name.
func (u UserUpdate) Columns() map[string]any {
	cols := make(map[string]any)
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.Phone != nil {
		cols["phone"] = *u.Phone
	}
	if u.Address != nil {
		cols["address"] = *u.Address
	}
	if u.PasswordHash != nil {
		cols["password_hash"] = *u.PasswordHash
	}
	return cols
}

// Apply copies the changed fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.FirstName != nil {
		user.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		user.LastName = *u.LastName
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Address != nil {
		addr := *u.Address
		user.Address = &addr
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
}
