// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"quizdash/internal/domain/entity"
	"quizdash/internal/usecase/session"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput defines the credentials for email and password sign-in.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput defines the credentials for a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// OpenSessionOutput returns the bearer token that addresses a new session.
type OpenSessionOutput struct {
	SessionID uuid.UUID
	Token     string
	ExpiresIn time.Duration
}

// SessionView is the client-facing state of a session.
type SessionView struct {
	CurrentUser        *entity.User        `json:"currentUser"`
	Loading            bool                `json:"loading"`
	State              entity.SessionState `json:"state"`
	ShowMilestoneModal bool                `json:"showMilestoneModal"`
}

// SessionUsecase manages client sessions and their authentication.
type SessionUsecase interface {
	OpenSession(ctx context.Context) (*OpenSessionOutput, error)
	ResolveSession(ctx context.Context, token string) (*session.Entry, error)
	CloseSession(ctx context.Context, entry *session.Entry) error

	GetSession(ctx context.Context, entry *session.Entry) (*SessionView, error)
	// WaitSession blocks until queued identity events are reconciled, then returns the view.
	WaitSession(ctx context.Context, entry *session.Entry) (*SessionView, error)
	RefreshSession(ctx context.Context, entry *session.Entry) (*SessionView, error)
	Restore(ctx context.Context, entry *session.Entry, idToken string) (*SessionView, error)

	Login(ctx context.Context, entry *session.Entry, input LoginInput) (*SessionView, error)
	Register(ctx context.Context, entry *session.Entry, input RegisterInput) (*SessionView, error)
	LoginWithGoogle(ctx context.Context, entry *session.Entry, idToken string) (*SessionView, error)
	LoginAsGuest(ctx context.Context, entry *session.Entry) (*SessionView, error)
	Logout(ctx context.Context, entry *session.Entry) (*SessionView, error)
}
