package impl

import (
	"context"
	"testing"
	"time"

	deliverycontext "quizdash/internal/delivery/context"
	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/service"
	"quizdash/internal/errors"
	mockRepo "quizdash/internal/mocks/repository"
	mockSvc "quizdash/internal/mocks/service"
	"quizdash/internal/usecase"
	"quizdash/internal/usecase/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sessionServiceFixtures struct {
	sessionFixtures
	service   *sessionService
	tokens    *mockSvc.MockTokenService
	publisher *mockSvc.MockEventPublisher
}

func createTestSessionService(t *testing.T) sessionServiceFixtures {
	t.Helper()

	fixtures := newTestRegistry(t, []int{3, 7})
	tokens := mockSvc.NewMockTokenService(t)
	publisher := mockSvc.NewMockEventPublisher(t)

	svc := NewSessionService(SessionServiceParams{
		Registry:  fixtures.registry,
		Tokens:    tokens,
		Publisher: publisher,
		Logger:    newDiscardLogger(),
	}).(*sessionService)

	return sessionServiceFixtures{
		sessionFixtures: fixtures,
		service:         svc,
		tokens:          tokens,
		publisher:       publisher,
	}
}

func TestSessionService_OpenSession(t *testing.T) {
	f := createTestSessionService(t)
	f.tokens.EXPECT().GenerateSessionToken(mock.AnythingOfType("uuid.UUID")).Return("signed-token", nil)

	out, err := f.service.OpenSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "signed-token", out.Token)
	assert.NotEqual(t, uuid.Nil, out.SessionID)
	assert.Equal(t, 1, f.registry.Len())
}

func TestSessionService_OpenSession_TokenError(t *testing.T) {
	f := createTestSessionService(t)
	f.tokens.EXPECT().GenerateSessionToken(mock.Anything).Return("", errors.New("signing failed"))

	_, err := f.service.OpenSession(context.Background())
	require.Error(t, err)
	assert.Zero(t, f.registry.Len())
}

func TestSessionService_ResolveSession(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)

	t.Run("valid token", func(t *testing.T) {
		f.tokens.EXPECT().ValidateSessionToken("good").Return(&service.SessionClaims{SessionID: entry.ID}, nil).Once()

		got, err := f.service.ResolveSession(context.Background(), "good")
		require.NoError(t, err)
		assert.Same(t, entry, got)
	})

	t.Run("invalid token", func(t *testing.T) {
		f.tokens.EXPECT().ValidateSessionToken("forged").Return(nil, errors.New("signature is invalid")).Once()

		_, err := f.service.ResolveSession(context.Background(), "forged")
		assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
	})

	t.Run("closed session", func(t *testing.T) {
		f.tokens.EXPECT().ValidateSessionToken("stale").Return(&service.SessionClaims{SessionID: uuid.New()}, nil).Once()

		_, err := f.service.ResolveSession(context.Background(), "stale")
		assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
	})
}

func TestSessionService_Login_SeedsWithoutPublishing(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)

	f.provider.EXPECT().SignIn(mock.Anything, entity.Credential{Email: "ada@example.com", Password: "secret"}).
		Return(&entity.Identity{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada"}, nil)
	f.profiles.EXPECT().Get(mock.Anything, "uid-1").Return(storedProfile(5, time.Time{}), nil)

	view, err := f.service.Login(context.Background(), entry, usecase.LoginInput{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, 5, view.CurrentUser.CurrentStreak)
	assert.Equal(t, entity.SessionAuthenticated, view.State)
	assert.False(t, view.Loading)
	assert.False(t, view.ShowMilestoneModal)
}

func TestSessionService_Refresh_PublishesMilestone(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)
	f.signIn(t, entry, storedProfile(2, time.Time{}))

	_, err := f.service.GetSession(context.Background(), entry)
	require.NoError(t, err)

	f.profiles.EXPECT().Get(mock.Anything, "uid-1").Return(storedProfile(3, time.Time{}), nil).Once()
	f.publisher.EXPECT().
		PublishMilestoneEvent(mock.Anything, mock.MatchedBy(func(e *entity.MilestoneEvent) bool {
			return e.UserID == "uid-1" &&
				e.SessionID == entry.ID.String() &&
				e.PreviousStreak == 2 &&
				e.CurrentStreak == 3 &&
				e.Milestone == 3 &&
				e.RequestID == "req-1"
		})).
		Return(nil).
		Once()

	ctx := deliverycontext.WithRequestID(context.Background(), "req-1")
	view, err := f.service.RefreshSession(ctx, entry)
	require.NoError(t, err)
	assert.True(t, view.ShowMilestoneModal)

	// the same streak is not celebrated twice
	view, err = f.service.GetSession(ctx, entry)
	require.NoError(t, err)
	assert.True(t, view.ShowMilestoneModal)
}

func TestSessionService_PublishFailureDoesNotFailOperation(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)
	f.signIn(t, entry, storedProfile(6, time.Time{}))
	_, _ = f.service.GetSession(context.Background(), entry)

	f.profiles.EXPECT().Get(mock.Anything, "uid-1").Return(storedProfile(7, time.Time{}), nil).Once()
	f.publisher.EXPECT().PublishMilestoneEvent(mock.Anything, mock.Anything).Return(errors.New("topic missing")).Once()

	view, err := f.service.RefreshSession(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, 7, view.CurrentUser.CurrentStreak)
}

func TestSessionService_LoginAsGuest(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)

	view, err := f.service.LoginAsGuest(context.Background(), entry)
	require.NoError(t, err)

	require.NotNil(t, view.CurrentUser)
	assert.True(t, view.CurrentUser.IsGuest)
	assert.Equal(t, "guest@example.com", view.CurrentUser.Email)
}

func TestSessionService_Logout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := createTestSessionService(t)
		entry := f.open(t)
		f.signIn(t, entry, storedProfile(1, time.Time{}))
		f.provider.EXPECT().SignOut(mock.Anything).Return(nil).Once()

		view, err := f.service.Logout(context.Background(), entry)
		require.NoError(t, err)
		assert.Nil(t, view.CurrentUser)
		assert.Equal(t, entity.SessionUnauthenticated, view.State)
	})

	t.Run("provider failure keeps user", func(t *testing.T) {
		f := createTestSessionService(t)
		entry := f.open(t)
		f.signIn(t, entry, storedProfile(1, time.Time{}))
		f.provider.EXPECT().SignOut(mock.Anything).Return(errors.New("network down")).Once()

		_, err := f.service.Logout(context.Background(), entry)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrIdentityProvider))
		assert.Equal(t, "uid-1", entry.Store.CurrentUser().UID)
	})
}

func TestSessionService_Register_ExistingAccount(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)
	f.provider.EXPECT().SignUp(mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrUserAlreadyExists.WrapMessage("sign up rejected"))

	_, err := f.service.Register(context.Background(), entry, usecase.RegisterInput{Email: "ada@example.com", Password: "secret"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
	assert.Nil(t, entry.Store.CurrentUser())
}

func TestSessionService_CloseSession(t *testing.T) {
	f := createTestSessionService(t)
	entry := f.open(t)

	require.NoError(t, f.service.CloseSession(context.Background(), entry))
	assert.Zero(t, f.registry.Len())

	err := f.service.CloseSession(context.Background(), entry)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
}

func TestSessionService_WaitSession(t *testing.T) {
	factory := mockSvc.NewMockIdentityProviderFactory(t)
	provider := mockSvc.NewMockIdentityProvider(t)
	profiles := mockRepo.NewMockProfileRepository(t)

	var announce service.IdentityHandler
	factory.EXPECT().NewSession().Return(provider).Once()
	provider.EXPECT().OnChange(mock.Anything).
		RunAndReturn(func(handler service.IdentityHandler) service.Unsubscribe {
			announce = handler

			return func() {}
		}).
		Once()

	release := make(chan struct{})
	profiles.EXPECT().Get(mock.Anything, "uid-1").
		RunAndReturn(func(context.Context, string) (*entity.User, error) {
			<-release

			return storedProfile(4, time.Time{}), nil
		}).
		Once()

	registry, err := session.NewRegistry(factory, profiles, session.RegistryOptions{}, newDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(registry.CloseAll)

	svc := NewSessionService(SessionServiceParams{
		Registry:  registry,
		Tokens:    mockSvc.NewMockTokenService(t),
		Publisher: mockSvc.NewMockEventPublisher(t),
		Logger:    newDiscardLogger(),
	})

	entry, err := registry.Open()
	require.NoError(t, err)
	require.NotNil(t, announce)

	announce(&entity.Identity{UID: "uid-1", Email: "ada@example.com"})

	view, err := svc.GetSession(context.Background(), entry)
	require.NoError(t, err)
	assert.Nil(t, view.CurrentUser)

	t.Run("context ends first", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := svc.WaitSession(ctx, entry)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	close(release)

	view, err = svc.WaitSession(context.Background(), entry)
	require.NoError(t, err)
	require.NotNil(t, view.CurrentUser)
	assert.Equal(t, "uid-1", view.CurrentUser.UID)
	assert.Equal(t, 4, view.CurrentUser.CurrentStreak)
	assert.False(t, view.Loading)
}
