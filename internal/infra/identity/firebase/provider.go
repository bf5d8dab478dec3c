// Package firebase implements the identity provider on Firebase Authentication.
// Token verification, user lookup, creation and revocation use the Admin SDK;
// password and Google sign-in go through the Identity Toolkit REST API.
package firebase

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"quizdash/config"
	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/service"
	"quizdash/internal/errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/fx"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// googleProviderID is the Identity Toolkit provider id for Google accounts.
const googleProviderID = "google.com"

// authClient is the subset of the Admin SDK auth client used here.
type authClient interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// signInClient exchanges client credentials for a Firebase user id.
type signInClient interface {
	VerifyPassword(ctx context.Context, email, password string) (string, error)
	VerifyGoogleIDToken(ctx context.Context, idToken string) (string, error)
}

// Params defines the dependencies of the identity provider factory
type Params struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	App    *firebase.App
	Logger *slog.Logger
}

type providerFactory struct {
	auth   authClient
	signIn signInClient
	logger *slog.Logger
}

// NewProviderFactory creates the factory handing out one provider session per client session.
func NewProviderFactory(params Params) (service.IdentityProviderFactory, error) {
	if params.Config.Firebase == nil || params.Config.Firebase.APIKey == "" {
		return nil, errors.New("firebase apiKey is required for password sign-in")
	}

	authClient, err := params.App.Auth(params.Ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get Firebase auth client")
	}

	toolkit, err := identitytoolkit.NewService(params.Ctx, option.WithAPIKey(params.Config.Firebase.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Identity Toolkit service")
	}

	return &providerFactory{
		auth:   authClient,
		signIn: &identityToolkitClient{service: toolkit},
		logger: params.Logger,
	}, nil
}

// NewSession returns a provider holding the sign-in state of one client.
func (f *providerFactory) NewSession() service.IdentityProvider {
	return newSession(f.auth, f.signIn, f.logger)
}

// session is the provider view of a single client: who is signed in, and who listens.
type session struct {
	auth   authClient
	signIn signInClient
	logger *slog.Logger
	stream *identityStream

	mu  sync.Mutex
	uid string
}

func newSession(authClient authClient, signIn signInClient, logger *slog.Logger) *session {
	return &session{
		auth:   authClient,
		signIn: signIn,
		logger: logger,
		stream: newIdentityStream(),
	}
}

// SignIn authenticates with email and password.
func (s *session) SignIn(ctx context.Context, credential entity.Credential) (*entity.Identity, error) {
	uid, err := s.signIn.VerifyPassword(ctx, credential.Email, credential.Password)
	if err != nil {
		return nil, err
	}

	return s.establish(ctx, uid)
}

// SignUp creates the account and signs it in.
func (s *session) SignUp(ctx context.Context, credential entity.Credential) (*entity.Identity, error) {
	record, err := s.auth.CreateUser(ctx, (&auth.UserToCreate{}).
		Email(credential.Email).
		Password(credential.Password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("sign up rejected")
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	identity := toIdentity(record)
	s.announce(identity)

	return identity, nil
}

// SignInWithGoogle signs in with the ID token from the client's Google popup flow.
func (s *session) SignInWithGoogle(ctx context.Context, credential entity.GoogleCredential) (*entity.Identity, error) {
	uid, err := s.signIn.VerifyGoogleIDToken(ctx, credential.IDToken)
	if err != nil {
		return nil, err
	}

	return s.establish(ctx, uid)
}

// Restore verifies a Firebase ID token the client kept from an earlier sign-in.
func (s *session) Restore(ctx context.Context, idToken string) (*entity.Identity, error) {
	token, err := s.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, domainerrors.ErrIDTokenInvalid.WrapMessage(err.Error())
	}

	return s.establish(ctx, token.UID)
}

// SignOut revokes the refresh tokens of the signed-in user and announces a nil identity.
func (s *session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	uid := s.uid
	s.mu.Unlock()

	if uid != "" {
		if err := s.auth.RevokeRefreshTokens(ctx, uid); err != nil {
			return errors.Wrap(err, "failed to revoke refresh tokens")
		}
	}

	s.mu.Lock()
	if s.uid == uid {
		s.uid = ""
	}
	s.mu.Unlock()

	s.announce(nil)

	return nil
}

// OnChange registers a handler for identity changes.
func (s *session) OnChange(handler service.IdentityHandler) service.Unsubscribe {
	return s.stream.subscribe(handler)
}

func (s *session) establish(ctx context.Context, uid string) (*entity.Identity, error) {
	record, err := s.auth.GetUser(ctx, uid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %s", uid)
	}

	identity := toIdentity(record)
	s.announce(identity)

	return identity, nil
}

func (s *session) announce(identity *entity.Identity) {
	s.mu.Lock()
	if identity == nil {
		s.uid = ""
	} else {
		s.uid = identity.UID
	}
	s.mu.Unlock()

	s.stream.publish(identity)
}

func toIdentity(record *auth.UserRecord) *entity.Identity {
	if record == nil || record.UserInfo == nil {
		return &entity.Identity{}
	}

	return &entity.Identity{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
	}
}

// identityToolkitClient calls the relying party endpoints of the Identity Toolkit API.
type identityToolkitClient struct {
	service *identitytoolkit.Service
}

func (c *identityToolkitClient) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	resp, err := c.service.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", mapToolkitError(err, "password sign-in failed")
	}

	return resp.LocalId, nil
}

func (c *identityToolkitClient) VerifyGoogleIDToken(ctx context.Context, idToken string) (string, error) {
	postBody := url.Values{}
	postBody.Set("id_token", idToken)
	postBody.Set("providerId", googleProviderID)

	resp, err := c.service.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          postBody.Encode(),
		RequestUri:        "http://localhost",
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", mapToolkitError(err, "google sign-in failed")
	}

	if resp.LocalId == "" {
		return "", domainerrors.ErrIDTokenInvalid.WrapMessage("google sign-in returned no user")
	}

	return resp.LocalId, nil
}

// mapToolkitError turns credential rejections into ErrInvalidCredentials and
// anything else into ErrIdentityProvider.
func mapToolkitError(err error, message string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		return domainerrors.ErrInvalidCredentials.WrapMessage(message + ": " + apiErr.Message)
	}

	return errors.Wrap(errors.Join(domainerrors.ErrIdentityProvider, err), message)
}
