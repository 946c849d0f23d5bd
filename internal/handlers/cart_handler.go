package handlers

import (
	"evspare/internal/cart"
	"evspare/internal/middleware"
	"evspare/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the caller's cart. Every route requires a session.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the cart routes on an authenticated /cart group.
func (h *CartHandler) RegisterRoutes(cartRoutes fiber.Router) {
	cartRoutes.Get("/", h.HandleGet)
	cartRoutes.Post("/items", h.HandleAdd)
	cartRoutes.Put("/items/:productId", h.HandleUpdate)
	cartRoutes.Delete("/items/:productId", h.HandleRemove)
	cartRoutes.Delete("/", h.HandleClear)
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items     []cart.Item `json:"items"`
	Total     float64     `json:"total"`
	ItemCount int         `json:"item_count"`
}

func newCartResponse(c *cart.Cart) cartResponse {
	return cartResponse{Items: c.Items(), Total: c.Total(), ItemCount: c.ItemCount()}
}

func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	ct, err := h.service.Get(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return err
	}
	return c.JSON(newCartResponse(ct))
}

// HandleAdd adds a product; quantity defaults to 1.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	ct, err := h.service.Add(c.UserContext(), middleware.CurrentSession(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(newCartResponse(ct))
}

// HandleUpdate sets a line's quantity; zero or less removes the line.
func (h *CartHandler) HandleUpdate(c *fiber.Ctx) error {
	var req updateCartRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	ct, err := h.service.UpdateQuantity(c.UserContext(), middleware.CurrentSession(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(newCartResponse(ct))
}

func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	ct, err := h.service.Remove(c.UserContext(), middleware.CurrentSession(c), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(newCartResponse(ct))
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.CurrentSession(c)); err != nil {
		return err
	}
	return c.JSON(newCartResponse(cart.New()))
}
