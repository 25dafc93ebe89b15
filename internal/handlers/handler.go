// Package handlers exposes the TidBid pages, the JSON API and the render
// websocket over Fiber.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pelusa-v/tidbid/internal/account"
	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/config"
	apperrors "github.com/pelusa-v/tidbid/internal/errors"
	"github.com/pelusa-v/tidbid/internal/forms"
	"github.com/pelusa-v/tidbid/internal/logger"
	"github.com/pelusa-v/tidbid/internal/metrics"
	"github.com/pelusa-v/tidbid/internal/ratelimit"
	"github.com/pelusa-v/tidbid/internal/session"
	"github.com/pelusa-v/tidbid/internal/web"
)

const (
	localSession   = "session"
	rememberCookie = "tidbid_remember"
)

// Handler carries the dependencies of every route.
type Handler struct {
	cfg       *config.Config
	sessions  *session.Registry
	hub       *chat.Manager
	directory *account.Directory
	metrics   *metrics.Metrics

	sendLimiter  *ratelimit.Limiter
	loginLimiter *ratelimit.Limiter

	now func() time.Time
	log *slog.Logger
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Config    *config.Config
	Sessions  *session.Registry
	Hub       *chat.Manager
	Directory *account.Directory
	Metrics   *metrics.Metrics
}

func NewHandler(d Deps) *Handler {
	idle := d.Config.Server.SessionIdleTTL
	return &Handler{
		cfg:          d.Config,
		sessions:     d.Sessions,
		hub:          d.Hub,
		directory:    d.Directory,
		metrics:      d.Metrics,
		sendLimiter:  ratelimit.New(d.Config.Limits.MessagesPerSecond, d.Config.Limits.MessageBurst, idle),
		loginLimiter: ratelimit.PerMinute(d.Config.Limits.LoginsPerMinute, d.Config.Limits.LoginBurst, idle),
		now:          time.Now,
		log:          logger.Component("http"),
	}
}

// NewApp builds a Fiber app with the template engine and error handler the
// routes expect. Params and bodies are copied out of the request buffer
// since routers keep ids past the request.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		Immutable:             true,
		Views:                 web.Engine(),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
}

// RegisterRoutes mounts every route on app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Use(recover.New())
	app.Use(h.requestLog)

	if h.cfg.Metrics.Enabled && h.metrics != nil {
		app.Get(h.cfg.Metrics.Path, adaptor.HTTPHandler(h.metrics.Handler()))
	}
	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static()}))

	// Legacy JSON endpoints of the placeholder backend.
	app.Get("/api/message", MessageHandler)
	app.Post("/login", h.LegacyLoginHandler)
	app.Post("/register", h.LegacyRegisterHandler)

	app.Use(h.withSession)

	// Pages
	app.Get("/", h.RoleSelectPage)
	app.Get("/admin/login", h.AdminLoginPage)
	app.Get("/client/login", h.ClientLoginPage)
	app.Get("/client/register", h.ClientRegisterPage)
	app.Get("/admin/dashboard", h.AdminDashboardPage)
	app.Get("/client/portal", h.ClientPortalPage)

	// Simulated auth
	app.Post("/api/role", RoleHandler)
	app.Post("/api/admin/login", h.AdminLoginHandler)
	app.Post("/api/client/login", h.ClientLoginHandler)
	app.Post("/api/client/register", h.ClientRegisterHandler)
	app.Post("/api/client/forgot-password", ForgotPasswordHandler)

	// Portal profile, notifications and the admin client list
	app.Get("/api/notifications", NotificationsHandler)
	app.Get("/api/profile", h.ProfileHandler)
	app.Put("/api/profile", h.UpdateProfileHandler)
	app.Post("/api/profile/password", h.ChangePasswordHandler)
	app.Get("/api/clients", h.ClientsHandler)

	// View router
	app.Get("/api/ws/:surface", h.UpgradeHandler, h.socketHandler())
	api := app.Group("/api/:surface")
	api.Get("/state", h.StateHandler)
	api.Post("/page/:page", h.SelectPageHandler)
	api.Get("/threads", h.FilterThreadsHandler)
	api.Post("/threads/:id/select", h.SelectThreadHandler)
	api.Post("/threads/:id/messages", h.SendMessageHandler)
	api.Post("/threads/:id/clear", h.ClearThreadHandler)
	api.Post("/sidebar/toggle", h.ToggleSidebarHandler)
	api.Post("/notifications/toggle", h.ToggleNotificationsHandler)
	api.Post("/viewport", h.ViewportHandler)
}

// withSession attaches the browser session, issuing a cookie for new ones.
func (h *Handler) withSession(c *fiber.Ctx) error {
	name := h.cfg.Server.SessionCookie
	s, created := h.sessions.Open(c.Cookies(name))
	if created {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    s.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Locals(localSession, s)
	return c.Next()
}

func currentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(localSession).(*session.Session)
	return s
}

func (h *Handler) requestLog(c *fiber.Ctx) error {
	start := h.now()
	err := c.Next()
	h.log.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

// statusOf maps an error kind onto an HTTP status.
func statusOf(err error) int {
	switch apperrors.GetKind(err) {
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindInvalid:
		return fiber.StatusBadRequest
	case apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperrors.KindLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	code := statusOf(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		logger.Component("http").Error("request failed", "path", c.Path(), "error", err)
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func invalid(c *fiber.Ctx, errs forms.Errors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": errs})
}

// simulateLatency waits the configured login delay unless ctx ends first.
func (h *Handler) simulateLatency(ctx context.Context) error {
	d := h.cfg.Auth.LoginDelay
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (h *Handler) allowLogin(c *fiber.Ctx) error {
	if h.loginLimiter.Allow(c.IP(), h.now()) {
		return nil
	}
	if h.metrics != nil {
		h.metrics.Limited("login")
	}
	return apperrors.RateLimited(c.IP())
}

// SessionClosed drops the per-session state the handler keeps. Wire it
// into session.Hooks.Closed.
func (h *Handler) SessionClosed(id string) {
	h.sendLimiter.Forget(id)
}

func (h *Handler) recordLogin(role string, ok bool) {
	if h.metrics != nil {
		h.metrics.Login(role, ok)
	}
}
