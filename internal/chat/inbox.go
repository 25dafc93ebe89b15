package chat

import "strings"

// Store owns the threads of one page. It is not safe for concurrent use;
// the Router serializes access.
type Store struct {
	threads map[string]Thread
	order   []string
}

func NewStore(seed []Thread) *Store {
	s := &Store{threads: make(map[string]Thread, len(seed))}
	for _, t := range seed {
		if _, dup := s.threads[t.ID]; !dup {
			s.order = append(s.order, t.ID)
		}
		s.threads[t.ID] = t
	}
	return s
}

func (s *Store) Get(id string) (Thread, bool) {
	t, ok := s.threads[id]
	return t, ok
}

// First returns the id of the first seeded thread, or "".
func (s *Store) First() string {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

// Append adds m to the thread and returns the updated thread.
func (s *Store) Append(id string, m Message) (Thread, bool) {
	t, ok := s.threads[id]
	if !ok {
		return Thread{}, false
	}
	t = t.WithMessage(m)
	s.threads[t.ID] = t
	return t, true
}

// Clear resets the thread to the greeting.
func (s *Store) Clear(id string, greeting Message) (Thread, bool) {
	t, ok := s.threads[id]
	if !ok {
		return Thread{}, false
	}
	t = t.Cleared(greeting)
	s.threads[t.ID] = t
	return t, true
}

func (s *Store) MarkRead(id string) {
	if t, ok := s.threads[id]; ok {
		t.Unread = 0
		s.threads[t.ID] = t
	}
}

func (s *Store) bumpUnread(id string) (Thread, bool) {
	t, ok := s.threads[id]
	if !ok {
		return Thread{}, false
	}
	t.Unread++
	s.threads[t.ID] = t
	return t, true
}

// Len returns the number of messages in a thread, or -1 if it is unknown.
func (s *Store) Len(id string) int {
	t, ok := s.threads[id]
	if !ok {
		return -1
	}
	return len(t.Messages)
}

func preview(t Thread, activeID string) ThreadPreview {
	p := ThreadPreview{
		ThreadID: t.ID,
		Title:    t.Name,
		Avatar:   t.Avatar,
		Status:   t.Status,
		Unread:   t.Unread,
		Active:   t.ID == activeID,
	}
	if last, ok := t.Last(); ok {
		p.LastBody = last.Text
		p.LastTs = last.SentAt.Unix()
	}
	return p
}

// Previews lists every thread in seed order.
func (s *Store) Previews(activeID string) []ThreadPreview {
	list := make([]ThreadPreview, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, preview(s.threads[id], activeID))
	}
	return list
}

// Filter returns the previews whose name or last message contains query,
// ignoring case. A blank query matches everything.
func (s *Store) Filter(query, activeID string) []ThreadPreview {
	q := strings.ToLower(strings.TrimSpace(query))
	list := make([]ThreadPreview, 0, len(s.order))
	for _, id := range s.order {
		p := preview(s.threads[id], activeID)
		if q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.LastBody), q) {
			list = append(list, p)
		}
	}
	return list
}
