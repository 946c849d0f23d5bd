package handlers

import (
	"evspare/internal/middleware"
	"evspare/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for the caller's orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service, validate: newValidator()}
}

// RegisterRoutes registers the order routes on an authenticated /orders group.
func (h *OrderHandler) RegisterRoutes(orderRoutes fiber.Router) {
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shipping_address" validate:"required,max=1000"`
	BillingAddress  string             `json:"billing_address" validate:"max=1000"`
	Notes           string             `json:"notes" validate:"max=2000"`
}

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=1000"`
	BillingAddress  string `json:"billing_address" validate:"max=1000"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// HandleCreateOrder places an order from an explicit item list. Prices in the
// request are ignored; the catalog decides.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := h.service.CreateOrder(c.UserContext(), middleware.CurrentSession(c), items, services.OrderDetails{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleCheckout places an order from the caller's cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	order, err := h.service.Checkout(c.UserContext(), middleware.CurrentSession(c), services.OrderDetails{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListMyOrders(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetMyOrder(c.UserContext(), middleware.CurrentSession(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}
