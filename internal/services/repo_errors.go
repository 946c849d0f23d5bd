package services

import (
	"errors"
	"fmt"

	"evspare/internal/repositories"
)

// repoErr maps repository sentinels onto service sentinels, keeping the repository
// error in the chain.
func repoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case repositories.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	case repositories.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	case errors.Is(err, repositories.ErrOutOfStock):
		return fmt.Errorf("%s: %w: %w", what, ErrInsufficientStock, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
