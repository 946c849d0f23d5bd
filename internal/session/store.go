// Package session keeps server-side session records and the signed tokens that
// point at them.
package session

import (
	"context"
	"errors"

	"evspare/internal/models"
)

// ErrNotFound is returned when no live session exists for an id.
var ErrNotFound = errors.New("session not found")

// Store persists sessions until they expire. Implementations must never return an
// expired session from Get.
type Store interface {
	Save(ctx context.Context, sess *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}
