package view

// DefaultBreakpoint is the viewport width at or below which the layout is
// treated as mobile.
const DefaultBreakpoint = 768

// State is everything that decides what a page currently shows.
type State struct {
	Surface           Surface `json:"surface"`
	Page              Page    `json:"page"`
	Title             string  `json:"title"`
	ThreadID          string  `json:"thread_id,omitempty"`
	Width             int     `json:"width"`
	Breakpoint        int     `json:"breakpoint"`
	Collapsed         bool    `json:"sidebar_collapsed"`
	OverlayShown      bool    `json:"overlay_shown"`
	NotificationsOpen bool    `json:"notifications_open"`
}

// New returns the initial state of a surface: its default page, no
// thread, desktop layout.
func New(s Surface, breakpoint int) State {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	ps := Pages(s)
	return State{
		Surface:    s,
		Page:       ps.Default,
		Title:      ps.Title(ps.Default),
		Width:      breakpoint + 1,
		Breakpoint: breakpoint,
	}
}

// Mobile reports whether the current width uses the narrow layout.
func (s State) Mobile() bool {
	return s.Width <= s.Breakpoint
}

// SelectPage activates the page id. Unknown ids leave the state as it was
// and report false.
func SelectPage(s State, id string) (State, bool) {
	ps := Pages(s.Surface)
	p, ok := ps.Lookup(id)
	if !ok {
		return s, false
	}
	s.Page = p
	s.Title = ps.Title(p)
	if s.Mobile() {
		s.OverlayShown = false
	}
	return s, true
}

// SelectThread records the selected thread.
func SelectThread(s State, threadID string) State {
	s.ThreadID = threadID
	return s
}

// ToggleSidebar flips the overlay on narrow layouts and the collapsed
// flag on wide ones.
func ToggleSidebar(s State) State {
	if s.Mobile() {
		s.OverlayShown = !s.OverlayShown
	} else {
		s.Collapsed = !s.Collapsed
	}
	return s
}

// CloseOverlay hides the mobile overlay.
func CloseOverlay(s State) State {
	s.OverlayShown = false
	return s
}

// ToggleNotifications flips the notification dropdown.
func ToggleNotifications(s State) State {
	s.NotificationsOpen = !s.NotificationsOpen
	return s
}

// CloseNotifications closes the dropdown, as a click outside does.
func CloseNotifications(s State) State {
	s.NotificationsOpen = false
	return s
}

// Resize records a new viewport width. Growing past the breakpoint hides
// the mobile overlay.
func Resize(s State, width int) State {
	if width <= 0 {
		return s
	}
	s.Width = width
	if !s.Mobile() {
		s.OverlayShown = false
	}
	return s
}

// Visible reports whether messages of threadID are on screen.
func (s State) Visible(threadID string) bool {
	return s.Page == PageChat && s.ThreadID != "" && s.ThreadID == threadID
}
