package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pelusa-v/tidbid/internal/logger"
	"github.com/pelusa-v/tidbid/internal/view"
)

// Renderer consumes render events. Implementations must not call back
// into the Router.
type Renderer interface {
	Render(Event)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Event)

func (f RendererFunc) Render(ev Event) { f(ev) }

// Recorder observes chat activity, typically for metrics.
type Recorder interface {
	MessageSent(surface view.Surface)
	ReplyDelivered(surface view.Surface, visible bool)
	ThreadCleared(surface view.Surface)
}

type nopRecorder struct{}

func (nopRecorder) MessageSent(view.Surface)          {}
func (nopRecorder) ReplyDelivered(view.Surface, bool) {}
func (nopRecorder) ThreadCleared(view.Surface)        {}

const (
	DefaultGreeting  = "Hello! How can I help you today?"
	DefaultMaxLength = 500
	clearedNotice    = "Chat cleared successfully!"
)

// Router owns the view state and threads of one page and turns user
// intents into state changes plus render events. All methods are safe for
// concurrent use; they are serialized on one mutex.
type Router struct {
	mu       sync.Mutex
	state    view.State
	store    *Store
	backend  ChatBackend
	renderer Renderer
	recorder Recorder
	greeting string
	maxLen   int
	now      func() time.Time
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

type Option func(*Router)

func WithRenderer(r Renderer) Option { return func(rt *Router) { rt.renderer = r } }

func WithRecorder(r Recorder) Option { return func(rt *Router) { rt.recorder = r } }

func WithGreeting(text string) Option { return func(rt *Router) { rt.greeting = text } }

func WithMaxLength(n int) Option { return func(rt *Router) { rt.maxLen = n } }

func WithClock(now func() time.Time) Option { return func(rt *Router) { rt.now = now } }

// WithBreakpoint sets the mobile layout width threshold.
func WithBreakpoint(px int) Option {
	return func(rt *Router) {
		rt.state.Breakpoint = px
		rt.state.Width = px + 1
	}
}

// NewRouter builds a router over store. The first thread of the store is
// selected, matching the pages' initial markup.
func NewRouter(surface view.Surface, store *Store, backend ChatBackend, opts ...Option) *Router {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		state:    view.New(surface, view.DefaultBreakpoint),
		store:    store,
		backend:  backend,
		renderer: RendererFunc(func(Event) {}),
		recorder: nopRecorder{},
		greeting: DefaultGreeting,
		maxLen:   DefaultMaxLength,
		now:      time.Now,
		log:      logger.Component("chat").With("surface", string(surface)),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state = view.SelectThread(r.state, store.First())
	return r
}

func (r *Router) State() view.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Thread returns a copy of a thread.
func (r *Router) Thread(id string) (Thread, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.store.Get(id)
	if ok {
		t.Messages = append([]Message(nil), t.Messages...)
	}
	return t, ok
}

// Threads lists the conversation previews.
func (r *Router) Threads() []ThreadPreview {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Previews(r.state.ThreadID)
}

func (r *Router) renderState(kind EventKind) {
	st := r.state
	r.renderer.Render(Event{Kind: kind, State: &st})
}

// SelectPage activates a page. Unknown ids are ignored and the previous
// page stays on screen.
func (r *Router) SelectPage(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, ok := view.SelectPage(r.state, id)
	if !ok {
		r.log.Debug("unknown page ignored", "page", id)
		return false
	}
	r.state = next
	r.renderState(EventPage)
	return true
}

// SelectThread makes id the active conversation and redraws its whole
// transcript. Unknown ids change nothing and render nothing.
func (r *Router) SelectThread(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.store.Get(id)
	if !ok {
		r.log.Debug("unknown thread ignored", "thread", id)
		return false
	}
	r.store.MarkRead(t.ID)
	r.state = view.SelectThread(r.state, t.ID)
	st := r.state
	r.renderer.Render(Event{Kind: EventThread, State: &st, ThreadID: t.ID, Thread: t.View()})
	return true
}

// SendMessage appends the user's text to a thread and asks the backend
// for an answer. Blank or over-long text and unknown threads are ignored.
func (r *Router) SendMessage(id, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if utf8.RuneCountInString(text) > r.maxLen {
		r.log.Debug("message over length ignored", "thread", id, "max", r.maxLen)
		return false
	}
	msg := Message{ID: uuid.NewString(), Text: text, Sender: SenderSelf, SentAt: r.now()}
	t, ok := r.store.Append(id, msg)
	if !ok {
		r.log.Debug("send to unknown thread ignored", "thread", id)
		return false
	}
	r.recorder.MessageSent(r.state.Surface)
	r.renderMessage(t, msg)

	replies := r.backend.Send(r.ctx, t.ID, text)
	r.wg.Add(1)
	go r.await(t.ID, replies)
	return true
}

// renderMessage draws msg if its thread is on screen, otherwise it only
// refreshes the thread's row in the list.
func (r *Router) renderMessage(t Thread, msg Message) {
	if r.state.Visible(t.ID) {
		m := msg
		r.renderer.Render(Event{Kind: EventMessage, ThreadID: t.ID, Message: &m})
		return
	}
	p := preview(t, r.state.ThreadID)
	r.renderer.Render(Event{Kind: EventPreview, ThreadID: t.ID, Preview: &p})
}

func (r *Router) await(id string, replies <-chan Reply) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case rep, ok := <-replies:
			if !ok {
				return
			}
			r.deliver(id, rep)
		}
	}
}

// deliver lands a reply in its thread whether or not the user is still
// looking at it; only a visible thread gets the message drawn.
func (r *Router) deliver(id string, rep Reply) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	visible := r.state.Visible(id)
	if rep.Typing {
		if visible {
			r.renderer.Render(Event{Kind: EventTyping, ThreadID: id})
		}
		return
	}

	msg := Message{ID: uuid.NewString(), Text: rep.Text, Sender: SenderPeer, SentAt: r.now()}
	t, ok := r.store.Append(id, msg)
	if !ok {
		return
	}
	if !visible {
		t, _ = r.store.bumpUnread(id)
	}
	r.recorder.ReplyDelivered(r.state.Surface, visible)
	r.renderMessage(t, msg)
}

// ClearThread resets a thread to a single greeting and reports success
// through a cleared event.
func (r *Router) ClearThread(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.store.Clear(id, NewGreeting(r.now(), r.greeting))
	if !ok {
		r.log.Debug("clear of unknown thread ignored", "thread", id)
		return false
	}
	r.recorder.ThreadCleared(r.state.Surface)
	ev := Event{Kind: EventCleared, ThreadID: t.ID, Notice: clearedNotice}
	if r.state.Visible(t.ID) {
		ev.Thread = t.View()
	}
	r.renderer.Render(ev)
	return true
}

func (r *Router) apply(fn func(view.State) view.State) view.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = fn(r.state)
	r.renderState(EventLayout)
	return r.state
}

func (r *Router) ToggleSidebar() view.State { return r.apply(view.ToggleSidebar) }

func (r *Router) ToggleNotifications() view.State { return r.apply(view.ToggleNotifications) }

func (r *Router) CloseOverlay() view.State { return r.apply(view.CloseOverlay) }

func (r *Router) CloseNotifications() view.State { return r.apply(view.CloseNotifications) }

func (r *Router) Resize(width int) view.State {
	return r.apply(func(s view.State) view.State { return view.Resize(s, width) })
}

// FilterThreads returns the threads matching query. Nothing is removed
// from the store.
func (r *Router) FilterThreads(query string) []ThreadPreview {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Filter(query, r.state.ThreadID)
}

// Dispatch runs a websocket command. Commands that answer only the
// caller, like filter, return that answer.
func (r *Router) Dispatch(cmd Command) (Event, bool) {
	switch cmd.Kind {
	case "select_page":
		r.SelectPage(cmd.Page)
	case "select_thread":
		r.SelectThread(cmd.ThreadID)
	case "send":
		r.SendMessage(cmd.ThreadID, cmd.Text)
	case "clear":
		r.ClearThread(cmd.ThreadID)
	case "toggle_sidebar":
		r.ToggleSidebar()
	case "toggle_notifications":
		r.ToggleNotifications()
	case "close_overlay":
		r.CloseOverlay()
	case "close_notifications":
		r.CloseNotifications()
	case "resize":
		r.Resize(cmd.Width)
	case "filter":
		return Event{Kind: EventFilter, Previews: r.FilterThreads(cmd.Query)}, true
	default:
		r.log.Debug("unknown command ignored", "kind", cmd.Kind)
	}
	return Event{}, false
}

// Close drops pending replies and waits for their goroutines.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
}
