package session

import (
	"sync"
	"time"

	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/forms"
	"github.com/pelusa-v/tidbid/internal/view"
)

const (
	ProfileUpdatedNotice  = "Profile updated successfully!"
	PasswordChangedNotice = "Password changed successfully!"
)

// Profile is the signed-in client shown on the portal.
type Profile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	School      string `json:"school"`
	MemberSince string `json:"memberSince"`
	Initials    string `json:"initials"`
}

// DemoProfile is the profile every new session starts with.
func DemoProfile() Profile {
	return Profile{
		Name:        "John Doe",
		Email:       "john.doe@example.com",
		Phone:       "+1 234 567 8900",
		School:      "ABC University",
		MemberSince: "January 2024",
		Initials:    "JD",
	}
}

// Session is one browser's state. It dies with the session cookie or after
// going idle.
type Session struct {
	ID string

	mu       sync.Mutex
	routers  map[view.Surface]*chat.Router
	profile  Profile
	user     string
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		routers:  map[view.Surface]*chat.Router{},
		profile:  DemoProfile(),
		lastSeen: now,
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SignIn records who logged in on this browser.
func (s *Session) SignIn(name string) {
	s.mu.Lock()
	s.user = name
	s.mu.Unlock()
}

// User returns the signed-in display name, or "" before any login.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// UpdateProfile applies a valid edit and re-derives the initials. Member
// since never changes.
func (s *Session) UpdateProfile(u forms.ProfileUpdate) (Profile, forms.Errors) {
	if errs := u.Validate(); !errs.Valid() {
		return s.Profile(), errs
	}
	t := u.Trimmed()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Name = t.Name
	s.profile.Email = t.Email
	s.profile.Phone = t.Phone
	s.profile.School = t.School
	s.profile.Initials = forms.Initials(t.Name)
	return s.profile, nil
}

// ChangePassword validates a password change. Nothing is stored; the
// portal only ever simulated it.
func (s *Session) ChangePassword(p forms.PasswordChange) forms.Errors {
	return p.Validate()
}

func (s *Session) close() {
	s.mu.Lock()
	routers := make([]*chat.Router, 0, len(s.routers))
	for _, rt := range s.routers {
		routers = append(routers, rt)
	}
	s.mu.Unlock()

	for _, rt := range routers {
		rt.Close()
	}
}
