// Package service defines interfaces for core, stateless domain logic and external collaborators.
package service

import (
	"context"

	"quizdash/internal/domain/entity"
)

// IdentityHandler receives identity changes; nil means signed out.
type IdentityHandler func(identity *entity.Identity)

// Unsubscribe releases an identity stream subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// IdentityProvider is the external authentication service backing one client session.
// Successful sign-in primitives also announce the identity to OnChange subscribers.
type IdentityProvider interface {
	// SignIn authenticates with email and password.
	SignIn(ctx context.Context, credential entity.Credential) (*entity.Identity, error)

	// SignUp creates an account with email and password and signs it in.
	SignUp(ctx context.Context, credential entity.Credential) (*entity.Identity, error)

	// SignInWithGoogle authenticates with an ID token from the Google sign-in popup.
	SignInWithGoogle(ctx context.Context, credential entity.GoogleCredential) (*entity.Identity, error)

	// Restore verifies a previously issued ID token and announces its identity.
	Restore(ctx context.Context, idToken string) (*entity.Identity, error)

	// SignOut ends the provider session and announces a nil identity.
	SignOut(ctx context.Context) error

	// OnChange registers a handler for identity changes.
	OnChange(handler IdentityHandler) Unsubscribe
}

// IdentityProviderFactory creates one provider session per client session.
type IdentityProviderFactory interface {
	NewSession() IdentityProvider
}
