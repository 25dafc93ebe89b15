package chat

import (
	"time"

	"github.com/pelusa-v/tidbid/internal/view"
)

type Sender string

const (
	SenderSelf Sender = "self"
	SenderPeer Sender = "peer"
)

type Message struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	SentAt time.Time `json:"sent_at"`
}

// Clock renders the timestamp the way the chat bubbles show it.
func (m Message) Clock() string {
	return m.SentAt.Format("15:04")
}

// Thread is one conversation. Messages are append-only and in
// chronological order.
type Thread struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Status   string    `json:"status"`
	Messages []Message `json:"messages"`
	Unread   int       `json:"unread"`
}

type ThreadHeader struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Status string `json:"status"`
}

func (t Thread) Header() ThreadHeader {
	return ThreadHeader{ID: t.ID, Name: t.Name, Avatar: t.Avatar, Status: t.Status}
}

// Last returns the newest message.
func (t Thread) Last() (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// WithMessage returns a copy of t with m appended. The receiver's slice
// is never shared with the result.
func (t Thread) WithMessage(m Message) Thread {
	msgs := make([]Message, len(t.Messages), len(t.Messages)+1)
	copy(msgs, t.Messages)
	t.Messages = append(msgs, m)
	return t
}

// Cleared returns a copy of t whose transcript is only greeting.
func (t Thread) Cleared(greeting Message) Thread {
	t.Messages = []Message{greeting}
	t.Unread = 0
	return t
}

// ThreadPreview is a row of the conversation list.
type ThreadPreview struct {
	ThreadID string `json:"thread_id"`
	Title    string `json:"title"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
	LastBody string `json:"last_body"`
	LastTs   int64  `json:"last_ts"`
	Unread   int    `json:"unread"`
	Active   bool   `json:"active"`
}

// ThreadView is a full transcript plus its header, what the chat panel
// needs to redraw.
type ThreadView struct {
	Header   ThreadHeader `json:"header"`
	Messages []Message    `json:"messages"`
}

func (t Thread) View() *ThreadView {
	msgs := make([]Message, len(t.Messages))
	copy(msgs, t.Messages)
	return &ThreadView{Header: t.Header(), Messages: msgs}
}

// Reply is one stage of a counterparty answer. A Typing reply carries no
// text and only drives the typing indicator.
type Reply struct {
	Text   string
	Typing bool
}

type EventKind string

const (
	EventPage    EventKind = "page"
	EventLayout  EventKind = "layout"
	EventThread  EventKind = "thread"
	EventMessage EventKind = "message"
	EventTyping  EventKind = "typing"
	EventPreview EventKind = "preview"
	EventCleared EventKind = "cleared"
	EventFilter  EventKind = "filter"
	EventNotice  EventKind = "notice"
)

// Event is a render instruction pushed to the page.
type Event struct {
	Kind     EventKind       `json:"kind"`
	State    *view.State     `json:"state,omitempty"`
	ThreadID string          `json:"thread_id,omitempty"`
	Thread   *ThreadView     `json:"thread,omitempty"`
	Message  *Message        `json:"message,omitempty"`
	Preview  *ThreadPreview  `json:"preview,omitempty"`
	Previews []ThreadPreview `json:"previews,omitempty"`
	Notice   string          `json:"notice,omitempty"`
}

// Command is an inbound request from the page's websocket.
type Command struct {
	Kind     string `json:"kind"`
	Page     string `json:"page,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Text     string `json:"text,omitempty"`
	Width    int    `json:"width,omitempty"`
	Query    string `json:"query,omitempty"`
}

// Notification is an entry of the notification dropdown.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
}
