package entity

import "time"

// SessionState is the reconciliation state of a client session.
type SessionState int

const (
	SessionUnauthenticated SessionState = iota
	SessionReconciling
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionReconciling:
		return "reconciling"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SessionSnapshot is a consistent view of a session at one instant.
type SessionSnapshot struct {
	CurrentUser *User        `json:"currentUser"`
	Loading     bool         `json:"loading"`
	State       SessionState `json:"state"`
}

// MilestoneEvent announces that a user's study streak crossed a milestone threshold.
type MilestoneEvent struct {
	RequestID      string    `json:"request_id,omitempty"` // For distributed tracing
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name,omitempty"`
	PreviousStreak int       `json:"previous_streak"`
	CurrentStreak  int       `json:"current_streak"`
	Milestone      int       `json:"milestone"`
	ReachedAt      time.Time `json:"reached_at"`
}
