package handlers

import (
	"evspare/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler exposes the public store settings (name, contact, currency, tax).
type SettingsHandler struct {
	service *services.SettingsService
}

func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) HandleGet(c *fiber.Ctx) error {
	s, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}
