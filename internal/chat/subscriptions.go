package chat

import (
	"strings"

	"github.com/pelusa-v/tidbid/internal/view"
)

// subscriptionKey addresses the sockets of one page: a session on one
// surface.
func subscriptionKey(sessionID string, surface view.Surface) string {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return ""
	}
	return sid + "/" + string(surface)
}

func sessionOf(key string) string {
	sid, _, _ := strings.Cut(key, "/")
	return sid
}

// Subscriptions indexes websocket clients by page.
type Subscriptions struct {
	PageClients map[string]map[string]bool // key -> set(client id)
	ClientPage  map[string]string          // client id -> key
}

func newSubscriptions() *Subscriptions {
	return &Subscriptions{
		PageClients: map[string]map[string]bool{},
		ClientPage:  map[string]string{},
	}
}

func (s *Subscriptions) subscribe(key, clientID string) bool {
	if key == "" || clientID == "" {
		return false
	}
	if _, ok := s.PageClients[key]; !ok {
		s.PageClients[key] = map[string]bool{}
	}
	s.PageClients[key][clientID] = true
	s.ClientPage[clientID] = key
	return true
}

func (s *Subscriptions) unsubscribe(clientID string) {
	key, ok := s.ClientPage[clientID]
	if !ok {
		return
	}
	delete(s.ClientPage, clientID)
	if set, ok := s.PageClients[key]; ok {
		delete(set, clientID)
		if len(set) == 0 {
			delete(s.PageClients, key)
		}
	}
}

func (s *Subscriptions) clients(key string) []string {
	set := s.PageClients[key]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// sessionClients returns every client of a session on any surface.
func (s *Subscriptions) sessionClients(sessionID string) []string {
	var ids []string
	for id, key := range s.ClientPage {
		if sessionOf(key) == sessionID {
			ids = append(ids, id)
		}
	}
	return ids
}
