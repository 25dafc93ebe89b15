package handlers

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/forms"
	"github.com/pelusa-v/tidbid/internal/session"
	"github.com/pelusa-v/tidbid/internal/view"
)

const (
	localSurface = "surface"
	tooFast      = "You are sending messages too fast. Please wait a moment."
)

type sendRequest struct {
	Text string `json:"text" form:"text"`
}

// router resolves the :surface param to the session's router.
func (h *Handler) router(c *fiber.Ctx) (*chat.Router, error) {
	surface, ok := view.ParseSurface(c.Params("surface"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown surface")
	}
	return h.sessions.Router(currentSession(c), surface), nil
}

func snapshot(rt *chat.Router) fiber.Map {
	st := rt.State()
	out := fiber.Map{"state": st, "threads": rt.Threads()}
	if t, ok := rt.Thread(st.ThreadID); ok {
		out["thread"] = t.View()
	}
	return out
}

func (h *Handler) allowSend(sessionID string) bool {
	if h.sendLimiter.Allow(sessionID, h.now()) {
		return true
	}
	if h.metrics != nil {
		h.metrics.Limited("send")
	}
	return false
}

// StateHandler GET /api/:surface/state
func (h *Handler) StateHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	return c.JSON(snapshot(rt))
}

// SelectPageHandler POST /api/:surface/page/:page
func (h *Handler) SelectPageHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	applied := rt.SelectPage(c.Params("page"))
	return c.JSON(fiber.Map{"applied": applied, "state": rt.State()})
}

// SelectThreadHandler POST /api/:surface/threads/:id/select
func (h *Handler) SelectThreadHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	if !rt.SelectThread(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "unknown thread")
	}
	return c.JSON(snapshot(rt))
}

// SendMessageHandler POST /api/:surface/threads/:id/messages
func (h *Handler) SendMessageHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if _, ok := rt.Thread(id); !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown thread")
	}
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	text := strings.TrimSpace(req.Text)
	switch {
	case text == "":
		return invalid(c, forms.Errors{"text": "Message cannot be empty"})
	case utf8.RuneCountInString(text) > h.cfg.Chat.MaxMessageLength:
		return invalid(c, forms.Errors{"text": "Message is too long"})
	}
	if !h.allowSend(currentSession(c).ID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": tooFast})
	}
	if !rt.SendMessage(id, text) {
		return fiber.NewError(fiber.StatusGone, "This conversation has ended. Please reload the page.")
	}
	t, _ := rt.Thread(id)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"thread": t.View()})
}

// ClearThreadHandler POST /api/:surface/threads/:id/clear
func (h *Handler) ClearThreadHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if !rt.ClearThread(id) {
		return fiber.NewError(fiber.StatusNotFound, "unknown thread")
	}
	t, _ := rt.Thread(id)
	return c.JSON(fiber.Map{"message": "Chat cleared successfully!", "thread": t.View()})
}

// FilterThreadsHandler GET /api/:surface/threads?q=
func (h *Handler) FilterThreadsHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	return c.JSON(rt.FilterThreads(c.Query("q")))
}

// ToggleSidebarHandler POST /api/:surface/sidebar/toggle
func (h *Handler) ToggleSidebarHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	return c.JSON(rt.ToggleSidebar())
}

// ToggleNotificationsHandler POST /api/:surface/notifications/toggle
func (h *Handler) ToggleNotificationsHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	return c.JSON(rt.ToggleNotifications())
}

// ViewportHandler POST /api/:surface/viewport?width=
func (h *Handler) ViewportHandler(c *fiber.Ctx) error {
	rt, err := h.router(c)
	if err != nil {
		return err
	}
	width := c.QueryInt("width", 0)
	if width <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "width must be a positive integer")
	}
	return c.JSON(rt.Resize(width))
}

// UpgradeHandler GET /api/ws/:surface
func (h *Handler) UpgradeHandler(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	surface, ok := view.ParseSurface(c.Params("surface"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown surface")
	}
	c.Locals(localSurface, surface)
	return c.Next()
}

func (h *Handler) socketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		s, _ := conn.Locals(localSession).(*session.Session)
		surface, _ := conn.Locals(localSurface).(view.Surface)
		if s == nil || surface == "" {
			_ = conn.Close()
			return
		}
		rt := h.sessions.Router(s, surface)
		client := &chat.Client{
			Id:        uuid.NewString(),
			SessionID: s.ID,
			Surface:   surface,
			Conn:      conn,
			Send:      make(chan []byte, 16),
			Manager:   h.hub,
			Dispatch:  h.dispatcher(s.ID, rt),
		}
		if !h.hub.Register(client) {
			_ = conn.Close()
			return
		}
		defer h.hub.Unregister(client)
		if h.metrics != nil {
			h.metrics.SocketOpened()
			defer h.metrics.SocketClosed()
		}

		if data, err := json.Marshal(initialEvent(rt)); err == nil {
			h.hub.Direct(client.Id, data)
		}
		go client.WritePump()
		client.ReadPump()
	})
}

// initialEvent redraws the whole page for a socket that just attached.
func initialEvent(rt *chat.Router) *chat.Event {
	st := rt.State()
	ev := &chat.Event{Kind: chat.EventThread, State: &st, ThreadID: st.ThreadID, Previews: rt.Threads()}
	if t, ok := rt.Thread(st.ThreadID); ok {
		ev.Thread = t.View()
	}
	return ev
}

// dispatcher runs socket commands against rt, throttling sends.
func (h *Handler) dispatcher(sessionID string, rt *chat.Router) func(chat.Command) (chat.Event, bool) {
	return func(cmd chat.Command) (chat.Event, bool) {
		if cmd.Kind == "send" && strings.TrimSpace(cmd.Text) != "" && !h.allowSend(sessionID) {
			return chat.Event{Kind: chat.EventNotice, ThreadID: cmd.ThreadID, Notice: tooFast}, true
		}
		return rt.Dispatch(cmd)
	}
}
