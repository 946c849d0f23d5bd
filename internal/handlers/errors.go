package handlers

import (
	"errors"

	"evspare/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// requestError is a malformed or invalid request body.
type requestError struct {
	message string
	fields  map[string]string
}

func (e *requestError) Error() string { return e.message }

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	var re *requestError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &re), errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidOrderStatus):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrEmailExists), errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientStock):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler renders every handler error as {"message": "..."}. Unexpected
// errors are logged and answered with a generic message.
func NewErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusOf(err)

		var re *requestError
		if errors.As(err, &re) {
			body := fiber.Map{"message": re.message}
			if len(re.fields) > 0 {
				body["errors"] = re.fields
			}
			return c.Status(code).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(code).JSON(fiber.Map{"message": fe.Message})
		}

		if code == fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID(c)).
				Msg("unhandled error")
			message := "Internal server error"
			if errors.Is(err, services.ErrRegistrationFailed) {
				message = services.ErrRegistrationFailed.Error()
			}
			return c.Status(code).JSON(fiber.Map{"message": message})
		}
		return c.Status(code).JSON(fiber.Map{"message": err.Error()})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
