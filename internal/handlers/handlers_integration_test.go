package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"evspare/internal/cart"
	"evspare/internal/db"
	"evspare/internal/handlers"
	"evspare/internal/models"
	"evspare/internal/repositories"
	"evspare/internal/services"
	"evspare/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app      *fiber.App
	battery  models.Product
	category models.Category
}

// setupApp sets up the full API against an in-memory SQLite database with the demo
// accounts and a small catalog.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	t.Cleanup(func() { _ = db.Close(conn) })

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(conn)
	productRepo := repositories.NewGORMProductRepository(conn)
	categoryRepo := repositories.NewGORMCategoryRepository(conn)
	orderRepo := repositories.NewGORMOrderRepository(conn)
	settingsRepo := repositories.NewGORMSettingsRepository(conn)

	// --- Services ---
	log := zerolog.Nop()
	carts := cart.NewMemoryStore()
	authService := services.NewAuthService(userRepo, session.NewMemoryStore(), session.NewSigner("test_jwt_secret"),
		services.NewFingerprintHasher(services.DefaultPepper), services.AuthOptions{Logger: log})
	productService := services.NewProductService(productRepo, categoryRepo, nil, log)
	settingsService := services.NewSettingsService(settingsRepo)

	app := handlers.NewApp(handlers.Deps{
		Auth:      authService,
		Products:  productService,
		Cart:      services.NewCartService(carts, productRepo),
		Orders:    services.NewOrderService(orderRepo, productRepo, settingsService, carts, nil, log),
		Analytics: services.NewAnalyticsService(orderRepo, userRepo, productRepo),
		Settings:  settingsService,
		Checks: map[string]handlers.Check{
			"database": func(context.Context) error { return db.Ping(conn) },
		},
		Logger: log,
	})

	// --- Seed ---
	for _, u := range []models.User{
		{Email: "admin@elyfevspare.com", PasswordHash: services.Fingerprint("admin123", services.DefaultPepper), Role: models.RoleAdmin, FirstName: "Store", LastName: "Admin", IsActive: true},
		{Email: "customer@example.com", PasswordHash: services.Fingerprint("customer123", services.DefaultPepper), Role: models.RoleCustomer, FirstName: "Asha", LastName: "Rao", IsActive: true},
	} {
		u := u
		require.NoError(t, userRepo.Create(ctx, &u))
	}
	env := &testEnv{app: app, category: models.Category{Name: "Batteries", Slug: "batteries"}}
	require.NoError(t, categoryRepo.Create(ctx, &env.category))
	env.battery = models.Product{Name: "Lithium Battery 48V", SKU: "BAT-48", Price: 1000, CategoryID: env.category.ID, StockQuantity: 5, IsActive: true}
	require.NoError(t, productRepo.Create(ctx, &env.battery))
	return env
}

// do sends a JSON request and decodes the JSON response into out when given.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if err := json.Unmarshal(raw, out); err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode
}

type authResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    models.Session `json:"user"`
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	var res authResponse
	code := e.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": email, "password": password}, &res)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestAuthFlow(t *testing.T) {
	env := setupApp(t)

	// Register always creates a customer.
	var reg authResponse
	code := env.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "New.Rider@Example.com", "password": "ride2025", "first_name": "Kiran", "last_name": "Shah", "role": "admin",
	}, &reg)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.RoleCustomer, reg.User.Role)
	assert.Equal(t, "new.rider@example.com", reg.User.Email)

	code = env.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "new.rider@example.com", "password": "x", "first_name": "K", "last_name": "S",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	var invalid struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	code = env.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"email": "not-an-email"}, &invalid)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, invalid.Errors, "email")
	assert.Contains(t, invalid.Errors, "password")

	// Mixed-case login, then /me.
	token := env.login(t, "Customer@Example.COM", "customer123")
	var me struct {
		User models.Session `json:"user"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, &me))
	assert.Equal(t, "customer@example.com", me.User.Email)

	var failed struct {
		Message string `json:"message"`
	}
	code = env.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "customer@example.com", "password": "nope"}, &failed)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, services.ErrInvalidCredentials.Error(), failed.Message)

	// Profile update.
	var updated struct {
		User models.Session `json:"user"`
	}
	code = env.do(t, http.MethodPatch, "/api/v1/auth/me", token, fiber.Map{"first_name": "Ashwini"}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ashwini", updated.User.FirstName)
	assert.Equal(t, "Rao", updated.User.LastName)

	// Logging in again replaces the presented session.
	var relogin authResponse
	req := fiber.Map{"email": "customer@example.com", "password": "customer123"}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/auth/login", token, req, &relogin))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/auth/logout", relogin.Token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", relogin.Token, nil, nil))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil, nil))
}

func TestCatalog(t *testing.T) {
	env := setupApp(t)

	var products []models.Product
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/products?q=battery&category=batteries", "", nil, &products))
	require.Len(t, products, 1)
	assert.Equal(t, env.battery.ID, products[0].ID)

	var categories []models.Category
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/categories", "", nil, &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, int64(1), categories[0].ProductCount)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/products/"+env.battery.ID, "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/products/"+uuid.NewString(), "", nil, nil))

	var related []models.Product
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/products/"+env.battery.ID+"/related", "", nil, &related))
	assert.Empty(t, related)

	var settings models.StoreSettings
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/settings", "", nil, &settings))
	assert.Equal(t, "ELYF EVSPARE", settings.StoreName)
	assert.Equal(t, 18.0, settings.TaxRate)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := setupApp(t)
	customer := env.login(t, "customer@example.com", "customer123")
	admin := env.login(t, "admin@elyfevspare.com", "admin123")

	for _, path := range []string{"/api/v1/admin/users", "/api/v1/admin/orders", "/api/v1/admin/analytics", "/api/v1/admin/settings"} {
		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, path, "", nil, nil), path)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, customer, nil, nil), path)
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, admin, nil, nil), path)
	}
}

func TestCartCheckoutAndOrders(t *testing.T) {
	env := setupApp(t)
	customer := env.login(t, "customer@example.com", "customer123")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/cart", "", nil, nil))

	var c struct {
		Items     []cart.Item `json:"items"`
		Total     float64     `json:"total"`
		ItemCount int         `json:"item_count"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/cart/items", customer, fiber.Map{"product_id": env.battery.ID}, &c))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/cart/items", customer, fiber.Map{"product_id": env.battery.ID, "quantity": 1}, &c))
	assert.Equal(t, 2, c.ItemCount)
	assert.Equal(t, 2000.0, c.Total)

	assert.Equal(t, http.StatusUnprocessableEntity,
		env.do(t, http.MethodPut, "/api/v1/cart/items/"+env.battery.ID, customer, fiber.Map{"quantity": 9}, nil))

	var order models.Order
	code := env.do(t, http.MethodPost, "/api/v1/orders/checkout", customer, fiber.Map{"shipping_address": "12 MG Road, Pune"}, &order)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 2000.0, order.Subtotal)
	assert.Equal(t, 360.0, order.TaxAmount)
	assert.Equal(t, 2360.0, order.TotalAmount)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/cart", customer, nil, &c))
	assert.Empty(t, c.Items)
	assert.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/api/v1/orders/checkout", customer, fiber.Map{"shipping_address": "12 MG Road, Pune"}, nil))

	// Direct order; stock is now 3.
	code = env.do(t, http.MethodPost, "/api/v1/orders", customer, fiber.Map{
		"items":            []fiber.Map{{"product_id": env.battery.ID, "quantity": 4, "unit_price": 1}},
		"shipping_address": "12 MG Road, Pune",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	var mine []models.Order
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/orders", customer, nil, &mine))
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 1)
	assert.Equal(t, env.battery.ID, mine[0].Items[0].ProductID)

	// Another customer cannot read it.
	var reg authResponse
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"email": "other@example.com", "password": "pw", "first_name": "O", "last_name": "T",
	}, &reg))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, reg.Token, nil, nil))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, customer, nil, nil))

	// Admin moves it along.
	admin := env.login(t, "admin@elyfevspare.com", "admin123")
	path := "/api/v1/admin/orders/" + order.ID + "/status"
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path, admin, fiber.Map{"status": "lost"}, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, path, admin, fiber.Map{"status": "delivered"}, &order))
	assert.Equal(t, models.OrderDelivered, order.Status)

	var analytics models.Analytics
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/admin/analytics", admin, nil, &analytics))
	assert.Equal(t, int64(1), analytics.TotalOrders)
	assert.Equal(t, int64(1), analytics.CompletedOrders)
	assert.Equal(t, 2360.0, analytics.TotalRevenue)
	assert.Equal(t, int64(2), analytics.TotalCustomers)

	// An ordered product stays in the catalog.
	var failure struct {
		Message string `json:"message"`
	}
	require.Equal(t, http.StatusConflict, env.do(t, http.MethodDelete, "/api/v1/admin/products/"+env.battery.ID, admin, nil, &failure))
	assert.Contains(t, failure.Message, "product has orders")
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/products/"+env.battery.ID, "", nil, nil))
}

func TestAdminCatalogAndSettings(t *testing.T) {
	env := setupApp(t)
	admin := env.login(t, "admin@elyfevspare.com", "admin123")

	var created models.Product
	code := env.do(t, http.MethodPost, "/api/v1/admin/products", admin, fiber.Map{
		"name": "Hub Motor 1000W", "sku": "MTR-1000", "price": 15000, "stock_quantity": 2, "category_id": env.category.ID,
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, created.IsActive)
	assert.Equal(t, "PCS", created.Unit)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/admin/products", admin, fiber.Map{
		"name": "Hub Motor copy", "sku": "MTR-1000", "price": 1,
	}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/admin/products", admin, fiber.Map{
		"name": "No price", "sku": "NP-1",
	}, nil))

	code = env.do(t, http.MethodPut, "/api/v1/admin/products/"+created.ID, admin, fiber.Map{
		"name": "Hub Motor 1000W", "sku": "MTR-1000", "price": 14500, "stock_quantity": 2, "is_active": false,
	}, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/products/"+created.ID, "", nil, nil))

	var all []models.Product
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/admin/products", admin, nil, &all))
	assert.Len(t, all, 2)

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/v1/admin/products/"+created.ID+"/image", admin, nil, nil))
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/admin/products/"+created.ID, admin, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/admin/products/"+created.ID, admin, nil, nil))

	var settings models.StoreSettings
	code = env.do(t, http.MethodPut, "/api/v1/admin/settings", admin, fiber.Map{
		"store_name": "ELYF EVSPARE", "currency": "INR", "tax_rate": 12,
	}, &settings)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 12.0, settings.TaxRate)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/admin/settings", admin, fiber.Map{
		"store_name": "ELYF EVSPARE", "currency": "INR", "tax_rate": 120,
	}, nil))

	var users []models.User
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/admin/users", admin, nil, &users))
	require.Len(t, users, 2)
	var customerID string
	for _, u := range users {
		if u.Role == models.RoleCustomer {
			customerID = u.ID
		}
	}
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/admin/users/"+customerID+"/role", admin, fiber.Map{"role": "owner"}, nil))
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/admin/users/"+customerID+"/deactivate", admin, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "customer@example.com", "password": "customer123",
	}, nil))
}

func TestHealth(t *testing.T) {
	env := setupApp(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", nil, nil))

	var ready struct {
		Status string `json:"status"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", "", nil, &ready))
	assert.Equal(t, "ok", ready.Status)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/metrics", "", nil, nil))
}
