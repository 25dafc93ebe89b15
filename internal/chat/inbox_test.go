package chat

import (
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/pelusa-v/tidbid/internal/view"
)

func TestStore_SeedOrderAndDuplicates(t *testing.T) {
	s := NewStore([]Thread{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
		{ID: "a", Name: "Alpha Two"},
	})
	require.Equal(t, "a", s.First())

	previews := s.Previews("")
	require.Len(t, previews, 2)
	require.Equal(t, "Alpha Two", previews[0].Title, "later seed wins, first position kept")
	require.Equal(t, "Beta", previews[1].Title)

	require.Equal(t, "", NewStore(nil).First())
}

func TestStore_AppendDoesNotAlias(t *testing.T) {
	now := time.Now()
	s := NewStore(SeedThreads(view.SurfaceAdmin, now, DefaultGreeting))

	before, _ := s.Get("sarah")
	_, ok := s.Append("sarah", Message{ID: "x", Text: "new", Sender: SenderSelf, SentAt: now})
	require.True(t, ok)

	require.Len(t, before.Messages, 4, "earlier copies keep their length")
	require.Equal(t, 5, s.Len("sarah"))
	require.Equal(t, -1, s.Len("nobody"))

	_, ok = s.Append("nobody", Message{})
	require.False(t, ok)
}

func TestStore_ClearResetsUnread(t *testing.T) {
	s := NewStore(SeedThreads(view.SurfaceAdmin, time.Now(), DefaultGreeting))
	s.bumpUnread("mike")
	s.bumpUnread("mike")
	th, _ := s.Get("mike")
	require.Equal(t, 2, th.Unread)

	th, ok := s.Clear("mike", NewGreeting(time.Now(), "hello"))
	require.True(t, ok)
	require.Len(t, th.Messages, 1)
	require.Equal(t, SenderPeer, th.Messages[0].Sender)
	require.Zero(t, th.Unread)
}

func TestStore_MarkRead(t *testing.T) {
	s := NewStore(SeedThreads(view.SurfaceAdmin, time.Now(), DefaultGreeting))
	s.bumpUnread("emma")
	s.MarkRead("emma")
	s.MarkRead("ghost")
	th, _ := s.Get("emma")
	require.Zero(t, th.Unread)
}

func TestStore_PreviewFields(t *testing.T) {
	now := time.Now()
	s := NewStore(SeedThreads(view.SurfaceAdmin, now, DefaultGreeting))

	p := s.Previews("david")
	require.Len(t, p, 4)
	david := p[3]
	require.Equal(t, "David Brown", david.Title)
	require.Equal(t, "Thanks for your help yesterday!", david.LastBody)
	require.True(t, david.Active)
	require.False(t, p[0].Active)
	require.Equal(t, now.Add(-24*time.Hour).Unix(), david.LastTs)
}

func TestStore_FilterCaseInsensitive(t *testing.T) {
	s := NewStore(SeedThreads(view.SurfaceAdmin, time.Now(), DefaultGreeting))

	require.Equal(t, s.Filter("JOHNSON", ""), s.Filter("johnson", ""))
	require.Len(t, s.Filter("  chen ", ""), 1)
	require.Len(t, s.Filter("REPORT", ""), 0, "only the last message is previewed")
	require.Len(t, s.Filter("sending", ""), 1)
}

func TestThread_LastOnEmpty(t *testing.T) {
	_, ok := Thread{}.Last()
	require.False(t, ok)
	p := preview(Thread{ID: "x"}, "")
	require.Empty(t, p.LastBody)
	require.Zero(t, p.LastTs)
}

func TestMessage_Clock(t *testing.T) {
	m := Message{SentAt: time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC)}
	require.Equal(t, "09:05", m.Clock())
}

func TestSeedThreads_Portal(t *testing.T) {
	threads := SeedThreads(view.SurfacePortal, time.Now(), "Hi there")
	require.Len(t, threads, 1)
	require.Equal(t, SupportThreadID, threads[0].ID)
	require.Equal(t, "Hi there", threads[0].Messages[0].Text)

	require.Len(t, Notifications(view.SurfacePortal), 3)
	require.Equal(t, "Welcome to TidBid!", Notifications(view.SurfacePortal)[0].Title)
	require.NotEmpty(t, Notifications(view.SurfaceAdmin))
}

func TestStore_WritesKeepThreadKey(t *testing.T) {
	now := time.Now()
	s := NewStore(SeedThreads(view.SurfaceAdmin, now, DefaultGreeting))

	buf := []byte("mike")
	id := unsafe.String(&buf[0], len(buf))
	_, ok := s.Append(id, Message{ID: "x", Text: "hi", Sender: SenderSelf, SentAt: now})
	require.True(t, ok)
	_, ok = s.Clear(id, NewGreeting(now, DefaultGreeting))
	require.True(t, ok)
	s.MarkRead(id)
	copy(buf, "zzzz")

	got, ok := s.Get("mike")
	require.True(t, ok)
	require.Len(t, got.Messages, 1)
	require.Len(t, s.Previews(""), 4)
	require.Equal(t, "mike", s.Previews("")[1].ThreadID)
}
