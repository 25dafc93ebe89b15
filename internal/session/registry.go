// Package session keeps one router per browser session and surface, and
// drops sessions that have gone idle.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/config"
	"github.com/pelusa-v/tidbid/internal/logger"
	"github.com/pelusa-v/tidbid/internal/view"
)

// Hooks observe the session lifecycle.
type Hooks struct {
	Opened func(id string)
	Closed func(id string)
}

// Registry owns the live sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	chat       config.ChatConfig
	breakpoint int
	idleTTL    time.Duration
	backends   map[view.Surface]chat.ChatBackend
	hub        *chat.Manager
	recorder   chat.Recorder
	hooks      Hooks
	now        func() time.Time
	log        *slog.Logger
}

type Option func(*Registry)

// WithHub routes the render events of every router through hub.
func WithHub(hub *chat.Manager) Option { return func(r *Registry) { r.hub = hub } }

func WithRecorder(rec chat.Recorder) Option { return func(r *Registry) { r.recorder = rec } }

func WithHooks(h Hooks) Option { return func(r *Registry) { r.hooks = h } }

func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// WithBackend replaces the simulated counterparty of one surface.
func WithBackend(s view.Surface, b chat.ChatBackend) Option {
	return func(r *Registry) { r.backends[s] = b }
}

// NewRegistry builds a registry from the chat and layout settings of cfg.
// Each surface gets a simulated backend unless one is supplied.
func NewRegistry(cfg *config.Config, opts ...Option) *Registry {
	r := &Registry{
		sessions:   map[string]*Session{},
		chat:       cfg.Chat,
		breakpoint: cfg.Layout.MobileBreakpoint,
		idleTTL:    cfg.Server.SessionIdleTTL,
		backends:   map[view.Surface]chat.ChatBackend{},
		now:        time.Now,
		log:        logger.Component("session"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := r.backends[view.SurfaceAdmin]; !ok {
		r.backends[view.SurfaceAdmin] = chat.NewSimulatedBackend(cfg.Chat.Admin)
	}
	if _, ok := r.backends[view.SurfacePortal]; !ok {
		r.backends[view.SurfacePortal] = chat.NewSimulatedBackend(cfg.Chat.Portal)
	}
	return r
}

// Reload applies new reply settings to the simulated backends. Live
// routers pick them up on their next send.
func (r *Registry) Reload(cfg *config.Config) {
	backends := map[view.Surface]config.ReplyConfig{
		view.SurfaceAdmin:  cfg.Chat.Admin,
		view.SurfacePortal: cfg.Chat.Portal,
	}
	for s, rc := range backends {
		if sb, ok := r.backends[s].(*chat.SimulatedBackend); ok {
			sb.SetConfig(rc)
		}
	}
	r.log.Info("reply settings reloaded")
}

// Open returns the session with id, creating a fresh one when id is empty
// or unknown. created reports whether a new session was made.
func (r *Registry) Open(id string) (s *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok && id != "" {
		existing.touch(r.now())
		return existing, false
	}
	s = newSession(uuid.NewString(), r.now())
	r.sessions[s.ID] = s
	r.log.Debug("session opened", "session", s.ID)
	if r.hooks.Opened != nil {
		r.hooks.Opened(s.ID)
	}
	return s, true
}

// Get returns a live session without creating one.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Router returns the router of a session's surface, building it on first
// use with freshly seeded threads.
func (r *Registry) Router(s *Session, surface view.Surface) *chat.Router {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.routers[surface]; ok {
		return rt
	}

	now := r.now()
	store := chat.NewStore(chat.SeedThreads(surface, now, r.chat.Greeting))
	opts := []chat.Option{
		chat.WithGreeting(r.chat.Greeting),
		chat.WithMaxLength(r.chat.MaxMessageLength),
		chat.WithBreakpoint(r.breakpoint),
	}
	if r.hub != nil {
		opts = append(opts, chat.WithRenderer(r.hub.Renderer(s.ID, surface)))
	}
	if r.recorder != nil {
		opts = append(opts, chat.WithRecorder(r.recorder))
	}
	rt := chat.NewRouter(surface, store, r.backends[surface], opts...)
	s.routers[surface] = rt
	return rt
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove ends a session now.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		r.end(s)
	}
	return ok
}

// Sweep ends every session idle for longer than the idle TTL and returns
// how many were ended.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		r.end(s)
	}
	if len(idle) > 0 {
		r.log.Info("idle sessions swept", "count", len(idle))
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done, then ends all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for _, s := range all {
		r.end(s)
	}
}

func (r *Registry) end(s *Session) {
	s.close()
	if r.hub != nil {
		r.hub.DropSession(s.ID)
	}
	if r.hooks.Closed != nil {
		r.hooks.Closed(s.ID)
	}
	r.log.Debug("session closed", "session", s.ID)
}
