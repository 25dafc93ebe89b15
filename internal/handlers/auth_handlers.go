package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/pelusa-v/tidbid/internal/errors"
	"github.com/pelusa-v/tidbid/internal/forms"
)

type roleRequest struct {
	Role forms.Role `json:"role" form:"role"`
}

// RoleHandler POST /api/role
func RoleHandler(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	path := req.Role.LoginPath()
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please select a role"})
	}
	return c.JSON(fiber.Map{"redirect": path})
}

// AdminLoginHandler POST /api/admin/login
func (h *Handler) AdminLoginHandler(c *fiber.Ctx) error {
	if err := h.allowLogin(c); err != nil {
		return err
	}
	var req forms.AdminLogin
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); !errs.Valid() {
		return invalid(c, errs)
	}
	if err := h.simulateLatency(c.UserContext()); err != nil {
		return err
	}
	if err := h.directory.AuthenticateAdmin(req); err != nil {
		h.recordLogin("admin", false)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials. Please try again."})
	}
	h.recordLogin("admin", true)
	currentSession(c).SignIn("Admin")
	return c.JSON(fiber.Map{
		"message":  "Login successful! Redirecting to admin panel...",
		"redirect": "/admin/dashboard",
	})
}

// ClientLoginHandler POST /api/client/login
func (h *Handler) ClientLoginHandler(c *fiber.Ctx) error {
	if err := h.allowLogin(c); err != nil {
		return err
	}
	var req forms.ClientLogin
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); !errs.Valid() {
		return invalid(c, errs)
	}
	if err := h.simulateLatency(c.UserContext()); err != nil {
		return err
	}
	name, err := h.directory.Authenticate(c.UserContext(), req)
	if err != nil {
		h.recordLogin("client", false)
		if apperrors.Is(err, apperrors.KindUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		return err
	}
	h.recordLogin("client", true)
	currentSession(c).SignIn(name)

	if req.Remember {
		c.Cookie(&fiber.Cookie{
			Name:     rememberCookie,
			Value:    strings.TrimSpace(req.Email),
			Path:     "/",
			Expires:  h.now().Add(time.Duration(h.cfg.Auth.RememberDays) * 24 * time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	} else {
		c.ClearCookie(rememberCookie)
	}
	return c.JSON(fiber.Map{
		"message":  "Login successful! Redirecting...",
		"name":     name,
		"redirect": "/client/portal",
	})
}

// ClientRegisterHandler POST /api/client/register
func (h *Handler) ClientRegisterHandler(c *fiber.Ctx) error {
	var req forms.Registration
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); !errs.Valid() {
		return invalid(c, errs)
	}
	client, err := h.directory.Register(c.UserContext(), req)
	if err != nil {
		if apperrors.Is(err, apperrors.KindConflict) {
			return invalidConflict(c)
		}
		return err
	}
	if h.metrics != nil {
		h.metrics.Registered()
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Account created successfully! Redirecting to login...",
		"client":   client,
		"redirect": "/client/login",
	})
}

func invalidConflict(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"errors": forms.Errors{"email": "An account with this email already exists"},
	})
}

// ForgotPasswordHandler POST /api/client/forgot-password
func ForgotPasswordHandler(c *fiber.Ctx) error {
	var req forms.ForgotPassword
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := req.Validate(); !errs.Valid() {
		return invalid(c, errs)
	}
	return c.JSON(fiber.Map{"message": "Password reset link sent to " + strings.TrimSpace(req.Email)})
}

// MessageHandler GET /api/message
func MessageHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello from TidBid!"})
}

type legacyLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LegacyLoginHandler POST /login
func (h *Handler) LegacyLoginHandler(c *fiber.Ctx) error {
	if err := h.allowLogin(c); err != nil {
		return err
	}
	var req legacyLogin
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	client, err := h.directory.AuthenticateUsername(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.recordLogin("legacy", false)
		if apperrors.Is(err, apperrors.KindUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "failed", "message": "Invalid credentials"})
		}
		return err
	}
	h.recordLogin("legacy", true)
	return c.JSON(fiber.Map{"status": "success", "username": client.Username})
}

type legacyRegistration struct {
	FullName string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LegacyRegisterHandler POST /register
func (h *Handler) LegacyRegisterHandler(c *fiber.Ctx) error {
	var req legacyRegistration
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	client, err := h.directory.RegisterLegacy(c.UserContext(), req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.Registered()
	}
	return c.JSON(fiber.Map{"status": "registered", "user": client.Username})
}
