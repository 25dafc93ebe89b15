package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/pelusa-v/tidbid/internal/config"
	"github.com/pelusa-v/tidbid/internal/view"
)

type recordingRenderer struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingRenderer) Render(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingRenderer) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recordingRenderer) kinds() []EventKind {
	var out []EventKind
	for _, ev := range r.all() {
		out = append(out, ev.Kind)
	}
	return out
}

// manualBackend holds every reply until the test releases it.
type manualBackend struct {
	mu      sync.Mutex
	pending []chan Reply
	texts   []string
}

func (b *manualBackend) Send(ctx context.Context, threadID, text string) <-chan Reply {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Reply, 2)
	b.pending = append(b.pending, ch)
	b.texts = append(b.texts, text)
	return ch
}

func (b *manualBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *manualBackend) release(i int, stages ...Reply) {
	b.mu.Lock()
	ch := b.pending[i]
	b.mu.Unlock()
	for _, s := range stages {
		ch <- s
	}
	close(ch)
}

type countingRecorder struct {
	mu               sync.Mutex
	sent, delivered  int
	visible, cleared int
}

func (c *countingRecorder) MessageSent(view.Surface) {
	c.mu.Lock()
	c.sent++
	c.mu.Unlock()
}

func (c *countingRecorder) ReplyDelivered(_ view.Surface, visible bool) {
	c.mu.Lock()
	c.delivered++
	if visible {
		c.visible++
	}
	c.mu.Unlock()
}

func (c *countingRecorder) ThreadCleared(view.Surface) {
	c.mu.Lock()
	c.cleared++
	c.mu.Unlock()
}

func newAdminRouter(t *testing.T, backend ChatBackend, opts ...Option) (*Router, *recordingRenderer) {
	t.Helper()
	rec := &recordingRenderer{}
	store := NewStore(SeedThreads(view.SurfaceAdmin, time.Now(), DefaultGreeting))
	opts = append([]Option{WithRenderer(rec)}, opts...)
	r := NewRouter(view.SurfaceAdmin, store, backend, opts...)
	t.Cleanup(r.Close)
	return r, rec
}

func threadLen(r *Router, id string) int {
	t, ok := r.Thread(id)
	if !ok {
		return -1
	}
	return len(t.Messages)
}

func TestRouter_InitialSelection(t *testing.T) {
	r, rec := newAdminRouter(t, &manualBackend{})
	st := r.State()
	require.Equal(t, view.PageChat, st.Page)
	require.Equal(t, "sarah", st.ThreadID)
	require.Empty(t, rec.all(), "construction renders nothing")
}

func TestRouter_SelectThreadScenario(t *testing.T) {
	r, rec := newAdminRouter(t, &manualBackend{})

	require.True(t, r.SelectThread("sarah"))

	evs := rec.all()
	require.Len(t, evs, 1)
	require.Equal(t, EventThread, evs[0].Kind)
	require.Len(t, evs[0].Thread.Messages, 4)
	require.Equal(t, "Sarah Johnson", evs[0].Thread.Header.Name)
	require.Equal(t, "Online", evs[0].Thread.Header.Status)
}

func TestRouter_SelectThreadReplacesTranscript(t *testing.T) {
	r, rec := newAdminRouter(t, &manualBackend{})

	require.True(t, r.SelectThread("mike"))
	evs := rec.all()
	require.Equal(t, "Mike Chen", evs[0].Thread.Header.Name)
	require.Len(t, evs[0].Thread.Messages, 2)
	require.Equal(t, "mike", r.State().ThreadID)

	// Chronological order is preserved.
	msgs := evs[0].Thread.Messages
	require.True(t, msgs[0].SentAt.Before(msgs[1].SentAt))
}

func TestRouter_SelectUnknownThread(t *testing.T) {
	r, rec := newAdminRouter(t, &manualBackend{})
	before := r.State()

	for _, id := range []string{"", "nobody", "SARAH"} {
		require.False(t, r.SelectThread(id))
	}
	require.Equal(t, before, r.State())
	require.Empty(t, rec.all())
}

func TestRouter_SendScenario(t *testing.T) {
	b := &manualBackend{}
	r, rec := newAdminRouter(t, b)

	require.True(t, r.SendMessage("sarah", "hi"))
	require.Equal(t, 5, threadLen(r, "sarah"))
	require.Equal(t, []EventKind{EventMessage}, rec.kinds())
	require.Equal(t, SenderSelf, rec.all()[0].Message.Sender)

	b.release(0, Reply{Text: "Thanks for your message!"})
	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 6 }, time.Second, 5*time.Millisecond)

	th, _ := r.Thread("sarah")
	last, _ := th.Last()
	require.Equal(t, SenderPeer, last.Sender)
	require.Equal(t, "Thanks for your message!", last.Text)
	require.Equal(t, 0, th.Unread)
}

func TestRouter_SendWithSimulatedBackend(t *testing.T) {
	backend := NewSimulatedBackend(config.ReplyConfig{
		MinDelay:  20 * time.Millisecond,
		MaxDelay:  20 * time.Millisecond,
		Responses: []string{"Absolutely, I agree."},
	})
	r, _ := newAdminRouter(t, backend)

	require.True(t, r.SendMessage("sarah", "hello there"))
	require.Equal(t, 5, threadLen(r, "sarah"))
	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 6 }, 2*time.Second, 5*time.Millisecond)
}

func TestRouter_SendBlankIsNoop(t *testing.T) {
	b := &manualBackend{}
	r, rec := newAdminRouter(t, b)

	for _, text := range []string{"", "   ", "\n\t"} {
		require.False(t, r.SendMessage("sarah", text))
	}
	require.Equal(t, 4, threadLen(r, "sarah"))
	require.Zero(t, b.calls())
	require.Empty(t, rec.all())
}

func TestRouter_SendTrimsAndLimitsLength(t *testing.T) {
	b := &manualBackend{}
	r, _ := newAdminRouter(t, b, WithMaxLength(10))

	require.False(t, r.SendMessage("sarah", strings.Repeat("x", 11)))
	require.True(t, r.SendMessage("sarah", "  0123456789  "))

	th, _ := r.Thread("sarah")
	last, _ := th.Last()
	require.Equal(t, "0123456789", last.Text)
	require.Equal(t, []string{"0123456789"}, b.texts)
}

func TestRouter_SendUnknownThread(t *testing.T) {
	b := &manualBackend{}
	r, rec := newAdminRouter(t, b)
	require.False(t, r.SendMessage("ghost", "hi"))
	require.Zero(t, b.calls())
	require.Empty(t, rec.all())
}

func TestRouter_ReplyToHiddenThread(t *testing.T) {
	b := &manualBackend{}
	rc := &countingRecorder{}
	r, rec := newAdminRouter(t, b, WithRecorder(rc))

	require.True(t, r.SendMessage("sarah", "are you there?"))
	require.True(t, r.SelectThread("emma"))

	b.release(0, Reply{Typing: true}, Reply{Text: "Perfect, let's do it!"})
	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 6 }, time.Second, 5*time.Millisecond)

	th, _ := r.Thread("sarah")
	require.Equal(t, 1, th.Unread)
	require.Equal(t, "emma", r.State().ThreadID)

	kinds := rec.kinds()
	require.Equal(t, []EventKind{EventMessage, EventThread, EventPreview}, kinds,
		"hidden thread gets no typing indicator and no message draw")
	last := rec.all()[2]
	require.Equal(t, "sarah", last.Preview.ThreadID)
	require.Equal(t, 1, last.Preview.Unread)

	rc.mu.Lock()
	require.Equal(t, 1, rc.sent)
	require.Equal(t, 1, rc.delivered)
	require.Equal(t, 0, rc.visible)
	rc.mu.Unlock()

	require.True(t, r.SelectThread("sarah"))
	th, _ = r.Thread("sarah")
	require.Zero(t, th.Unread)
}

func TestRouter_ReplyOffChatPage(t *testing.T) {
	b := &manualBackend{}
	r, rec := newAdminRouter(t, b)

	require.True(t, r.SendMessage("sarah", "ping"))
	require.True(t, r.SelectPage("settings"))
	b.release(0, Reply{Text: "pong"})

	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 6 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []EventKind{EventMessage, EventPage, EventPreview}, rec.kinds())
}

func TestRouter_TypingStageVisible(t *testing.T) {
	b := &manualBackend{}
	r, rec := newAdminRouter(t, b)

	require.True(t, r.SendMessage("sarah", "hello"))
	b.release(0, Reply{Typing: true}, Reply{Text: "hi back"})

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []EventKind{EventMessage, EventTyping, EventMessage}, rec.kinds())
	require.Equal(t, 6, threadLen(r, "sarah"))
}

func TestRouter_RepliesKeepPerThreadOrder(t *testing.T) {
	b := &manualBackend{}
	r, _ := newAdminRouter(t, b)

	require.True(t, r.SendMessage("sarah", "one"))
	b.release(0, Reply{Text: "reply one"})
	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 6 }, time.Second, 5*time.Millisecond)
	require.True(t, r.SendMessage("sarah", "two"))
	b.release(1, Reply{Text: "reply two"})
	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 8 }, time.Second, 5*time.Millisecond)

	th, _ := r.Thread("sarah")
	var texts []string
	for _, m := range th.Messages[4:] {
		texts = append(texts, m.Text)
	}
	require.Equal(t, []string{"one", "reply one", "two", "reply two"}, texts)
}

func TestRouter_ClearThread(t *testing.T) {
	b := &manualBackend{}
	r, rec := newAdminRouter(t, b, WithGreeting("Welcome back"))

	require.True(t, r.ClearThread("sarah"))
	require.Equal(t, 1, threadLen(r, "sarah"))
	evs := rec.all()
	require.Equal(t, EventCleared, evs[0].Kind)
	require.Equal(t, clearedNotice, evs[0].Notice)
	require.Len(t, evs[0].Thread.Messages, 1)
	require.Equal(t, "Welcome back", evs[0].Thread.Messages[0].Text)

	// Clearing a hidden thread still reports success but does not redraw.
	require.True(t, r.ClearThread("david"))
	require.Equal(t, 1, threadLen(r, "david"))
	require.Nil(t, rec.all()[1].Thread)

	require.True(t, r.ClearThread("david"))
	require.Equal(t, 1, threadLen(r, "david"))

	require.False(t, r.ClearThread("ghost"))
}

func TestRouter_ClearThenLateReply(t *testing.T) {
	b := &manualBackend{}
	r, _ := newAdminRouter(t, b)

	require.True(t, r.SendMessage("sarah", "hi"))
	require.True(t, r.ClearThread("sarah"))
	b.release(0, Reply{Text: "late"})
	require.Eventually(t, func() bool { return threadLen(r, "sarah") == 2 }, time.Second, 5*time.Millisecond)
}

func TestRouter_SelectPageScenario(t *testing.T) {
	r, rec := newAdminRouter(t, &manualBackend{})

	require.True(t, r.SelectPage("settings"))
	require.False(t, r.SelectPage("bogus"))
	require.Equal(t, view.PageSettings, r.State().Page)
	require.Equal(t, "Settings", r.State().Title)
	require.Equal(t, []EventKind{EventPage}, rec.kinds())
}

func TestRouter_LayoutToggles(t *testing.T) {
	r, rec := newAdminRouter(t, &manualBackend{}, WithBreakpoint(768))

	st := r.ToggleSidebar()
	require.True(t, st.Collapsed)

	st = r.Resize(500)
	require.True(t, st.Mobile())
	st = r.ToggleSidebar()
	require.True(t, st.OverlayShown)
	st = r.CloseOverlay()
	require.False(t, st.OverlayShown)

	st = r.ToggleNotifications()
	require.True(t, st.NotificationsOpen)
	st = r.CloseNotifications()
	require.False(t, st.NotificationsOpen)

	for _, k := range rec.kinds() {
		require.Equal(t, EventLayout, k)
	}
}

func TestRouter_FilterThreads(t *testing.T) {
	r, _ := newAdminRouter(t, &manualBackend{})

	upper := r.FilterThreads("SARAH")
	lower := r.FilterThreads("sarah")
	require.Equal(t, upper, lower)
	require.Len(t, lower, 1)
	require.Equal(t, "sarah", lower[0].ThreadID)
	require.True(t, lower[0].Active)

	require.Equal(t, lower, r.FilterThreads("sarah"), "filter is idempotent")

	byPreview := r.FilterThreads("proposal")
	require.Len(t, byPreview, 1)
	require.Equal(t, "emma", byPreview[0].ThreadID)

	require.Len(t, r.FilterThreads(""), 4)
	require.Empty(t, r.FilterThreads("zzz"))
	require.Len(t, r.Threads(), 4, "filtering removes nothing")
}

func TestRouter_CloseDropsPendingReplies(t *testing.T) {
	b := &manualBackend{}
	rec := &recordingRenderer{}
	store := NewStore(SeedThreads(view.SurfaceAdmin, time.Now(), DefaultGreeting))
	r := NewRouter(view.SurfaceAdmin, store, b, WithRenderer(rec))

	require.True(t, r.SendMessage("sarah", "bye"))
	r.Close()
	r.Close()

	// The await goroutine is gone, so a late reply can never land.
	b.release(0, Reply{Text: "too late"})
	require.Equal(t, 5, store.Len("sarah"))
	require.False(t, r.SendMessage("sarah", "again"))
}

func TestRouter_Dispatch(t *testing.T) {
	b := &manualBackend{}
	r, _ := newAdminRouter(t, b)

	_, ok := r.Dispatch(Command{Kind: "select_page", Page: "clients"})
	require.False(t, ok)
	require.Equal(t, view.PageClients, r.State().Page)

	r.Dispatch(Command{Kind: "select_page", Page: "chat"})
	r.Dispatch(Command{Kind: "select_thread", ThreadID: "mike"})
	r.Dispatch(Command{Kind: "send", ThreadID: "mike", Text: "report?"})
	require.Equal(t, 3, threadLen(r, "mike"))

	ev, ok := r.Dispatch(Command{Kind: "filter", Query: "MIKE"})
	require.True(t, ok)
	require.Equal(t, EventFilter, ev.Kind)
	require.Len(t, ev.Previews, 1)

	r.Dispatch(Command{Kind: "resize", Width: 320})
	r.Dispatch(Command{Kind: "toggle_sidebar"})
	require.True(t, r.State().OverlayShown)

	_, ok = r.Dispatch(Command{Kind: "explode"})
	require.False(t, ok)
}

func TestRouter_PortalSurface(t *testing.T) {
	b := &manualBackend{}
	store := NewStore(SeedThreads(view.SurfacePortal, time.Now(), DefaultGreeting))
	r := NewRouter(view.SurfacePortal, store, b)
	t.Cleanup(r.Close)

	require.Equal(t, view.PageDashboard, r.State().Page)
	require.Equal(t, SupportThreadID, r.State().ThreadID)
	require.False(t, r.SelectPage("clients"))
	require.True(t, r.SelectPage("chat"))
	require.True(t, r.SendMessage(SupportThreadID, "I need help"))
	require.Equal(t, 2, threadLen(r, SupportThreadID))
}

func TestRouter_KeepsOwnThreadIDs(t *testing.T) {
	b := &manualBackend{}
	r, _ := newAdminRouter(t, b)

	buf := []byte("mike")
	id := unsafe.String(&buf[0], len(buf))
	require.True(t, r.SelectThread(id))
	require.True(t, r.SendMessage(id, "report?"))
	copy(buf, "ting")

	require.Equal(t, "mike", r.State().ThreadID)
	b.release(0, Reply{Text: "attached"})
	require.Eventually(t, func() bool { return threadLen(r, "mike") == 4 }, time.Second, 5*time.Millisecond)
}
