package middleware

import (
	"evspare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole enforces role-based access control. It must run after AuthRequired.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentication required"})
		}
		if _, ok := allowed[sess.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
		}
		return c.Next()
	}
}
