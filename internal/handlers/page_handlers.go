package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pelusa-v/tidbid/internal/account"
	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/forms"
	"github.com/pelusa-v/tidbid/internal/session"
	"github.com/pelusa-v/tidbid/internal/view"
)

// RoleSelectPage GET /
func (h *Handler) RoleSelectPage(c *fiber.Ctx) error {
	return c.Render("role", fiber.Map{"Title": "Welcome"})
}

// AdminLoginPage GET /admin/login
func (h *Handler) AdminLoginPage(c *fiber.Ctx) error {
	return c.Render("admin_login", fiber.Map{"Title": "Admin Login", "AdminEmail": h.cfg.Auth.AdminEmail})
}

// ClientLoginPage GET /client/login
func (h *Handler) ClientLoginPage(c *fiber.Ctx) error {
	return c.Render("client_login", fiber.Map{"Title": "Sign In", "Remembered": c.Cookies(rememberCookie)})
}

// ClientRegisterPage GET /client/register
func (h *Handler) ClientRegisterPage(c *fiber.Ctx) error {
	return c.Render("client_register", fiber.Map{"Title": "Create Account"})
}

// AdminDashboardPage GET /admin/dashboard
func (h *Handler) AdminDashboardPage(c *fiber.Ctx) error {
	data := h.surfaceData(c, view.SurfaceAdmin)
	clients, err := h.directory.List(c.UserContext(), "")
	if err != nil {
		return err
	}
	data["Clients"] = clients
	return c.Render("admin_dashboard", data)
}

// ClientPortalPage GET /client/portal
func (h *Handler) ClientPortalPage(c *fiber.Ctx) error {
	return c.Render("client_portal", h.surfaceData(c, view.SurfacePortal))
}

func (h *Handler) surfaceData(c *fiber.Ctx, surface view.Surface) fiber.Map {
	s := currentSession(c)
	rt := h.sessions.Router(s, surface)
	st := rt.State()
	data := fiber.Map{
		"Title":         st.Title,
		"State":         st,
		"Pages":         view.Pages(surface).Links(),
		"Threads":       rt.Threads(),
		"Notifications": chat.Notifications(surface),
		"Profile":       s.Profile(),
		"User":          s.User(),
		"MaxLength":     h.cfg.Chat.MaxMessageLength,
		"AdminEmail":    h.cfg.Auth.AdminEmail,
	}
	if surface == view.SurfaceAdmin {
		data["SelfAvatar"] = chat.SelfAvatar()
	}
	if t, ok := rt.Thread(st.ThreadID); ok {
		data["Thread"] = t.View()
	}
	return data
}

// NotificationsHandler GET /api/notifications?surface=
func NotificationsHandler(c *fiber.Ctx) error {
	surface, ok := view.ParseSurface(c.Query("surface", string(view.SurfacePortal)))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown surface")
	}
	return c.JSON(chat.Notifications(surface))
}

// ProfileHandler GET /api/profile
func (h *Handler) ProfileHandler(c *fiber.Ctx) error {
	return c.JSON(currentSession(c).Profile())
}

// UpdateProfileHandler PUT /api/profile
func (h *Handler) UpdateProfileHandler(c *fiber.Ctx) error {
	var req forms.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	p, errs := currentSession(c).UpdateProfile(req)
	if !errs.Valid() {
		return invalid(c, errs)
	}
	return c.JSON(fiber.Map{"message": session.ProfileUpdatedNotice, "profile": p})
}

// ChangePasswordHandler POST /api/profile/password
func (h *Handler) ChangePasswordHandler(c *fiber.Ctx) error {
	var req forms.PasswordChange
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if errs := currentSession(c).ChangePassword(req); !errs.Valid() {
		return invalid(c, errs)
	}
	return c.JSON(fiber.Map{"message": session.PasswordChangedNotice})
}

type clientRow struct {
	account.Client
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// ClientsHandler GET /api/clients?q=
func (h *Handler) ClientsHandler(c *fiber.Ctx) error {
	clients, err := h.directory.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	rows := make([]clientRow, 0, len(clients))
	for _, cl := range clients {
		rows = append(rows, clientRow{Client: cl, Name: cl.Name(), Initials: forms.Initials(cl.Name())})
	}
	return c.JSON(rows)
}
