package handlers

import (
	"time"

	"evspare/internal/middleware"
	"evspare/internal/models"
	"evspare/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication and the caller's profile.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes. authRequired guards the
// profile routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", authRequired, h.HandleMe)
	authRoutes.Patch("/me", authRequired, h.HandleUpdateProfile)
}

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Phone     string  `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address"`
	Password  *string `json:"password"`
}

type sessionResponse struct {
	Message   string          `json:"message,omitempty"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt string          `json:"expires_at,omitempty"`
	User      *models.Session `json:"user"`
}

func newSessionResponse(message string, sess *models.Session) sessionResponse {
	return sessionResponse{
		Message:   message,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
		User:      sess,
	}
}

// HandleRegister creates a customer account and returns its session.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	sess, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newSessionResponse("Registration successful", sess))
}

// HandleLogin exchanges credentials for a session. A session presented with the
// request is revoked first, so one client holds one session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if previous, err := middleware.BearerToken(c); err == nil {
		h.authService.Logout(c.UserContext(), previous)
	}
	return c.JSON(newSessionResponse("Login successful", sess))
}

// HandleLogout revokes the presented session. It always succeeds.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if token, err := middleware.BearerToken(c); err == nil {
		h.authService.Logout(c.UserContext(), token)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleMe returns the caller's session.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.CurrentSession(c)})
}

// HandleUpdateProfile changes the caller's own profile.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	sess, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentToken(c), services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "user": sess})
}
