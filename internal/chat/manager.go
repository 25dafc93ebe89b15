package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pelusa-v/tidbid/internal/logger"
	"github.com/pelusa-v/tidbid/internal/view"
)

type direct struct {
	clientID string
	data     []byte
}

// Envelope addresses a render event to the sockets of one page.
type Envelope struct {
	SessionID string
	Surface   view.Surface
	Event     Event
}

// Manager fans router events out to websocket clients. A single loop
// owns registration and delivery.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client // id -> client
	subs    *Subscriptions

	RegisterChan   chan *Client
	UnregisterChan chan *Client
	EventChan      chan *Envelope
	dropChan       chan string
	directChan     chan direct

	done chan struct{}
	log  *slog.Logger
}

func NewManager() *Manager {
	return &Manager{
		clients:        map[string]*Client{},
		subs:           newSubscriptions(),
		RegisterChan:   make(chan *Client),
		UnregisterChan: make(chan *Client),
		EventChan:      make(chan *Envelope, 256),
		dropChan:       make(chan string, 16),
		directChan:     make(chan direct, 64),
		done:           make(chan struct{}),
		log:            logger.Component("hub"),
	}
}

// Renderer returns a Renderer that routes events to the sockets of the
// given page. Events are dropped if the hub is saturated or stopped.
func (m *Manager) Renderer(sessionID string, surface view.Surface) Renderer {
	return RendererFunc(func(ev Event) {
		select {
		case m.EventChan <- &Envelope{SessionID: sessionID, Surface: surface, Event: ev}:
		case <-m.done:
		default:
			m.log.Warn("render event dropped", "session", sessionID, "kind", ev.Kind)
		}
	})
}

// ClientCount returns the number of sockets attached to a page.
func (m *Manager) ClientCount(sessionID string, surface view.Surface) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs.PageClients[subscriptionKey(sessionID, surface)])
}

// Register attaches a client unless the hub has stopped.
func (m *Manager) Register(c *Client) bool {
	select {
	case m.RegisterChan <- c:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) Unregister(c *Client) {
	select {
	case m.UnregisterChan <- c:
	case <-m.done:
	}
}

// DropSession detaches every socket of a session.
func (m *Manager) DropSession(sessionID string) {
	select {
	case m.dropChan <- sessionID:
	case <-m.done:
	}
}

// Direct queues data for a single client. Only the hub loop writes to a
// client's Send channel, so it never races with the close on unregister.
func (m *Manager) Direct(clientID string, data []byte) {
	select {
	case m.directChan <- direct{clientID: clientID, data: data}:
	case <-m.done:
	}
}

func (m *Manager) remove(c *Client) {
	if _, ok := m.clients[c.Id]; !ok {
		return
	}
	delete(m.clients, c.Id)
	m.subs.unsubscribe(c.Id)
	close(c.Send)
}

// Start runs the hub loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for _, c := range m.clients {
				m.remove(c)
			}
			m.mu.Unlock()
			return

		case client := <-m.RegisterChan:
			m.mu.Lock()
			m.clients[client.Id] = client
			m.subs.subscribe(subscriptionKey(client.SessionID, client.Surface), client.Id)
			m.mu.Unlock()
			m.log.Debug("client registered", "client", client.Id, "session", client.SessionID, "surface", client.Surface)

		case client := <-m.UnregisterChan:
			m.mu.Lock()
			m.remove(client)
			m.mu.Unlock()
			m.log.Debug("client unregistered", "client", client.Id)

		case sid := <-m.dropChan:
			m.mu.Lock()
			for _, id := range m.subs.sessionClients(sid) {
				if c := m.clients[id]; c != nil {
					m.remove(c)
				}
			}
			m.mu.Unlock()

		case d := <-m.directChan:
			m.mu.RLock()
			if c := m.clients[d.clientID]; c != nil {
				select {
				case c.Send <- d.data:
				default:
				}
			}
			m.mu.RUnlock()

		case env := <-m.EventChan:
			data, err := json.Marshal(&env.Event)
			if err != nil {
				m.log.Error("encode event", "error", err)
				continue
			}
			m.mu.RLock()
			for _, id := range m.subs.clients(subscriptionKey(env.SessionID, env.Surface)) {
				c := m.clients[id]
				if c == nil {
					continue
				}
				select {
				case c.Send <- data:
				default:
				}
			}
			m.mu.RUnlock()
		}
	}
}
