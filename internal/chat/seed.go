package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/pelusa-v/tidbid/internal/view"
)

const (
	avatarSarah = "https://images.unsplash.com/photo-1494790108755-2616b612b1e5?w=100&h=100&fit=crop&crop=face"
	avatarMike  = "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=100&h=100&fit=crop&crop=face"
	avatarEmma  = "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=100&h=100&fit=crop&crop=face"
	avatarDavid = "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=100&h=100&fit=crop&crop=face"
	avatarSelf  = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100&h=100&fit=crop&crop=face"

	// SupportThreadID is the portal's only conversation.
	SupportThreadID = "support"
)

// SelfAvatar is the avatar drawn next to the admin's own messages.
func SelfAvatar() string { return avatarSelf }

func seedMessage(now time.Time, minutesAgo int, sender Sender, text string) Message {
	return Message{
		ID:     uuid.NewString(),
		Text:   text,
		Sender: sender,
		SentAt: now.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

// NewGreeting builds the synthetic counterparty greeting used by clear.
func NewGreeting(now time.Time, text string) Message {
	return Message{ID: uuid.NewString(), Text: text, Sender: SenderPeer, SentAt: now}
}

// SeedThreads returns the demo conversations a fresh page starts with.
func SeedThreads(s view.Surface, now time.Time, greeting string) []Thread {
	if s == view.SurfacePortal {
		return []Thread{{
			ID:       SupportThreadID,
			Name:     "TidBid Support",
			Avatar:   "A",
			Status:   "Online",
			Messages: []Message{NewGreeting(now, greeting)},
		}}
	}
	return []Thread{
		{
			ID:     "sarah",
			Name:   "Sarah Johnson",
			Avatar: avatarSarah,
			Status: "Online",
			Messages: []Message{
				seedMessage(now, 32, SenderPeer, "Hi! I wanted to discuss the new project requirements."),
				seedMessage(now, 30, SenderSelf, "Sure! I'd be happy to help. What specific aspects would you like to cover?"),
				seedMessage(now, 28, SenderPeer, "I think we need to focus on the user interface design first."),
				seedMessage(now, 25, SenderSelf, "That makes sense. Let me prepare some mockups for our next meeting."),
			},
		},
		{
			ID:     "mike",
			Name:   "Mike Chen",
			Avatar: avatarMike,
			Status: "Away",
			Messages: []Message{
				seedMessage(now, 90, SenderPeer, "Can you send me the latest report?"),
				seedMessage(now, 85, SenderSelf, "Sending it over now."),
			},
		},
		{
			ID:     "emma",
			Name:   "Emma Wilson",
			Avatar: avatarEmma,
			Status: "Online",
			Messages: []Message{
				seedMessage(now, 180, SenderPeer, "The client meeting went really well."),
				seedMessage(now, 175, SenderSelf, "Great news! Any follow-ups?"),
				seedMessage(now, 170, SenderPeer, "They want a proposal by Friday."),
			},
		},
		{
			ID:     "david",
			Name:   "David Brown",
			Avatar: avatarDavid,
			Status: "Offline",
			Messages: []Message{
				seedMessage(now, 1440, SenderPeer, "Thanks for your help yesterday!"),
			},
		},
	}
}

// Notifications returns the canned dropdown entries of a surface.
func Notifications(s view.Surface) []Notification {
	if s == view.SurfacePortal {
		return []Notification{
			{Title: "Welcome to TidBid!", Message: "Thank you for joining our platform. Explore all the features we have to offer.", Time: "2 hours ago"},
			{Title: "System Update", Message: "We have improved our chat system for better performance.", Time: "1 day ago"},
			{Title: "New Features Available", Message: "Check out our new dashboard features and improved user interface.", Time: "3 days ago"},
		}
	}
	return []Notification{
		{Title: "New client registered", Message: "A new client account is waiting for review.", Time: "5 min ago"},
		{Title: "New message", Message: "Sarah Johnson sent you a message.", Time: "30 min ago"},
		{Title: "System Update", Message: "Scheduled maintenance tonight at 11 PM.", Time: "2 hours ago"},
	}
}
