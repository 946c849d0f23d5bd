package middleware

import (
	"context"
	"errors"
	"strings"

	"evspare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Locals keys set by AuthRequired.
const (
	LocalSession = "session"
	LocalToken   = "token"
)

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.Session, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", errors.New("Authorization header is required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "") {
		return "", errors.New("Authorization header format must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), nil
}

// AuthRequired is a Fiber middleware that requires a live session.
func AuthRequired(resolver SessionResolver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}

		sess, err := resolver.CurrentUser(c.UserContext(), token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("session rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
			})
		}

		c.Locals(LocalSession, sess)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// CurrentSession returns the session stored by AuthRequired, or nil.
func CurrentSession(c *fiber.Ctx) *models.Session {
	sess, _ := c.Locals(LocalSession).(*models.Session)
	return sess
}

// CurrentToken returns the bearer token accepted by AuthRequired.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalToken).(string)
	return token
}
