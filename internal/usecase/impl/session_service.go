package impl

import (
	"context"
	"log/slog"
	"time"

	"quizdash/config"
	deliverycontext "quizdash/internal/delivery/context"
	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/service"
	"quizdash/internal/usecase"
	"quizdash/internal/usecase/session"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type sessionService struct {
	registry *session.Registry
	tokens   service.TokenService
	observer *milestoneObserver
	tokenTTL time.Duration
	logger   *slog.Logger
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	Registry  *session.Registry
	Tokens    service.TokenService
	Publisher service.EventPublisher
	Config    *config.Config
	Logger    *slog.Logger
}

// NewSessionService creates the session usecase.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	var ttl time.Duration
	if params.Config != nil && params.Config.Session != nil {
		ttl = params.Config.Session.TokenTTL
	}

	return &sessionService{
		registry: params.Registry,
		tokens:   params.Tokens,
		observer: newMilestoneObserver(params.Publisher, params.Logger),
		tokenTTL: ttl,
		logger:   params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// OpenSession creates a session and signs the token that addresses it.
func (srv *sessionService) OpenSession(ctx context.Context) (*usecase.OpenSessionOutput, error) {
	entry, err := srv.registry.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session")
	}

	token, err := srv.tokens.GenerateSessionToken(entry.ID)
	if err != nil {
		_ = srv.registry.Close(entry.ID)

		return nil, errors.Wrap(err, "failed to sign session token")
	}

	srv.log(ctx).Info("Session opened", slog.String("session_id", entry.ID.String()))

	return &usecase.OpenSessionOutput{
		SessionID: entry.ID,
		Token:     token,
		ExpiresIn: srv.tokenTTL,
	}, nil
}

// ResolveSession maps a bearer token to its open session.
func (srv *sessionService) ResolveSession(ctx context.Context, token string) (*session.Entry, error) {
	claims, err := srv.tokens.ValidateSessionToken(token)
	if err != nil {
		srv.log(ctx).Debug("Session token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrSessionNotFound.WrapMessage("invalid session token")
	}

	entry, err := srv.registry.Get(claims.SessionID)
	if err != nil {
		return nil, errors.Wrapf(err, "session %s", claims.SessionID)
	}

	return entry, nil
}

// CloseSession releases the session. The provider session is left signed in.
func (srv *sessionService) CloseSession(ctx context.Context, entry *session.Entry) error {
	if err := srv.registry.Close(entry.ID); err != nil {
		return errors.Wrap(err, "failed to close session")
	}

	srv.log(ctx).Info("Session closed", slog.String("session_id", entry.ID.String()))

	return nil
}

// GetSession returns the session view.
func (srv *sessionService) GetSession(ctx context.Context, entry *session.Entry) (*usecase.SessionView, error) {
	return srv.observer.view(ctx, entry), nil
}

// WaitSession returns the view once no reconciliation is queued or running.
func (srv *sessionService) WaitSession(ctx context.Context, entry *session.Entry) (*usecase.SessionView, error) {
	if err := entry.Store.WaitIdle(ctx); err != nil {
		return nil, errors.Wrap(err, "session did not settle")
	}

	return srv.observer.view(ctx, entry), nil
}

// RefreshSession re-reads the stored profile of the current user.
func (srv *sessionService) RefreshSession(ctx context.Context, entry *session.Entry) (*usecase.SessionView, error) {
	if _, err := entry.Store.Refresh(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to refresh profile")
	}

	return srv.observer.view(ctx, entry), nil
}

// Restore signs the session back in with an ID token kept by the client.
func (srv *sessionService) Restore(ctx context.Context, entry *session.Entry, idToken string) (*usecase.SessionView, error) {
	if _, err := entry.Store.Restore(ctx, idToken); err != nil {
		return nil, errors.Wrap(err, "failed to restore session")
	}

	return srv.observer.view(ctx, entry), nil
}

// Login signs in with email and password.
func (srv *sessionService) Login(ctx context.Context, entry *session.Entry, input usecase.LoginInput) (*usecase.SessionView, error) {
	credential := entity.Credential{Email: input.Email, Password: input.Password}
	if _, err := entry.Store.Login(ctx, credential); err != nil {
		return nil, errors.Wrap(err, "failed to log in")
	}

	return srv.observer.view(ctx, entry), nil
}

// Register creates an account with a default profile.
func (srv *sessionService) Register(ctx context.Context, entry *session.Entry, input usecase.RegisterInput) (*usecase.SessionView, error) {
	credential := entity.Credential{Email: input.Email, Password: input.Password}
	if _, err := entry.Store.Register(ctx, credential); err != nil {
		return nil, errors.Wrap(err, "failed to register")
	}

	return srv.observer.view(ctx, entry), nil
}

// LoginWithGoogle signs in with the ID token from the Google popup.
func (srv *sessionService) LoginWithGoogle(ctx context.Context, entry *session.Entry, idToken string) (*usecase.SessionView, error) {
	if _, err := entry.Store.LoginWithGoogle(ctx, entity.GoogleCredential{IDToken: idToken}); err != nil {
		return nil, errors.Wrap(err, "failed to log in with google")
	}

	return srv.observer.view(ctx, entry), nil
}

// LoginAsGuest replaces the user with an unsaved guest.
func (srv *sessionService) LoginAsGuest(ctx context.Context, entry *session.Entry) (*usecase.SessionView, error) {
	if _, err := entry.Store.LoginAsGuest(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to start guest session")
	}

	return srv.observer.view(ctx, entry), nil
}

// Logout signs the session out.
func (srv *sessionService) Logout(ctx context.Context, entry *session.Entry) (*usecase.SessionView, error) {
	if err := entry.Store.Logout(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to log out")
	}

	return srv.observer.view(ctx, entry), nil
}
