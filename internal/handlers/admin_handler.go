package handlers

import (
	"evspare/internal/middleware"
	"evspare/internal/models"
	"evspare/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the back-office. Routes are mounted behind AuthRequired and
// RequireRole(admin); the services check the role again.
type AdminHandler struct {
	auth      *services.AuthService
	products  *services.ProductService
	orders    *services.OrderService
	analytics *services.AnalyticsService
	settings  *services.SettingsService
	validate  *validator.Validate
}

func NewAdminHandler(auth *services.AuthService, products *services.ProductService, orders *services.OrderService,
	analytics *services.AnalyticsService, settings *services.SettingsService) *AdminHandler {
	return &AdminHandler{
		auth:      auth,
		products:  products,
		orders:    orders,
		analytics: analytics,
		settings:  settings,
		validate:  newValidator(),
	}
}

// RegisterRoutes registers the admin routes on a guarded /admin group.
func (h *AdminHandler) RegisterRoutes(admin fiber.Router) {
	admin.Get("/analytics", h.HandleAnalytics)

	admin.Get("/users", h.HandleListUsers)
	admin.Put("/users/:id/role", h.HandleUpdateUserRole)
	admin.Post("/users/:id/deactivate", h.HandleDeactivateUser)

	admin.Post("/categories", h.HandleCreateCategory)

	admin.Get("/products", h.HandleListProducts)
	admin.Post("/products", h.HandleCreateProduct)
	admin.Put("/products/:id", h.HandleUpdateProduct)
	admin.Delete("/products/:id", h.HandleDeleteProduct)
	admin.Post("/products/:id/image", h.HandleUploadImage)

	admin.Get("/orders", h.HandleListOrders)
	admin.Get("/orders/:id", h.HandleGetOrder)
	admin.Put("/orders/:id/status", h.HandleUpdateOrderStatus)

	admin.Get("/settings", h.HandleGetSettings)
	admin.Put("/settings", h.HandleUpdateSettings)
}

func (h *AdminHandler) HandleAnalytics(c *fiber.Ctx) error {
	summary, err := h.analytics.Summary(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// --- Users ---

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin customer"`
}

func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext(), middleware.CurrentToken(c))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *AdminHandler) HandleUpdateUserRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.auth.UpdateUserRole(c.UserContext(), middleware.CurrentToken(c), c.Params("id"), models.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Role updated"})
}

func (h *AdminHandler) HandleDeactivateUser(c *fiber.Ctx) error {
	if err := h.auth.DeactivateUser(c.UserContext(), middleware.CurrentToken(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deactivated"})
}

// --- Catalog ---

type categoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Slug string `json:"slug" validate:"required,min=2,max=100"`
}

type productRequest struct {
	Name          string  `json:"name" validate:"required,min=3,max=200"`
	SKU           string  `json:"sku" validate:"required,max=64"`
	Description   string  `json:"description" validate:"max=2000"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Unit          string  `json:"unit" validate:"max=20"`
	Image         string  `json:"image"`
	CategoryID    string  `json:"category_id" validate:"omitempty,uuid"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	IsActive      *bool   `json:"is_active"`
}

// toModel builds the product; is_active defaults to true.
func (r productRequest) toModel() *models.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Product{
		Name:          r.Name,
		SKU:           r.SKU,
		Description:   r.Description,
		Price:         r.Price,
		Unit:          r.Unit,
		Image:         r.Image,
		CategoryID:    r.CategoryID,
		StockQuantity: r.StockQuantity,
		IsActive:      active,
	}
}

func (h *AdminHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := h.products.CreateCategory(c.UserContext(), category); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleListProducts lists every product, inactive ones included.
func (h *AdminHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.products.ListAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *AdminHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product := req.toModel()
	if err := h.products.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *AdminHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product := req.toModel()
	if err := h.products.UpdateProduct(c.UserContext(), c.Params("id"), product); err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.products.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadImage stores the multipart "image" file and links it to the product.
func (h *AdminHandler) HandleUploadImage(c *fiber.Ctx) error {
	if !h.products.ImagesEnabled() {
		return services.ErrStorageDisabled
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return &requestError{message: "image file is required"}
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	product, err := h.products.UploadImage(c.UserContext(), c.Params("id"), fh.Filename,
		fh.Header.Get(fiber.HeaderContentType), fh.Size, f)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// --- Orders ---

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.ListAllOrders(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *AdminHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), middleware.CurrentSession(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

func (h *AdminHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateOrderStatus(c.UserContext(), middleware.CurrentSession(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// --- Settings ---

func (h *AdminHandler) HandleGetSettings(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}

func (h *AdminHandler) HandleUpdateSettings(c *fiber.Ctx) error {
	var req models.StoreSettings
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	s, err := h.settings.Update(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(s)
}
