package services

import "errors"

// Sentinel errors returned by the services. Callers classify with errors.Is; the
// HTTP layer maps each to a status code.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrStorageDisabled    = errors.New("image storage is not configured")
)
