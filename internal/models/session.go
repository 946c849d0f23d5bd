package models

import "time"

// Session is the server-held record of an authenticated identity.
// Token is the signed credential handed to the client; it is not stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"-"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasRole reports whether the session carries role r.
func (s *Session) HasRole(r Role) bool {
	return s != nil && s.Role == r
}

// NewSession builds a session for user valid for ttl starting at now.
func NewSession(id string, user *User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Address:   user.Address,
		IsActive:  user.IsActive,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}
