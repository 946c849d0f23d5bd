package handlers

import (
	"evspare/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleListCategories)
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/products/:id/related", h.HandleRelatedProducts)
}

// HandleListCategories lists categories with active product counts.
func (h *ProductHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// HandleListProducts lists active products, filtered by ?category= and ?q=.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("category"), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleRelatedProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultRelatedLimit)
	products, err := h.service.RelatedProducts(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(products)
}
