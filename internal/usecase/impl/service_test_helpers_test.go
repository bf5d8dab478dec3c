package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/service"
	mockRepo "quizdash/internal/mocks/repository"
	mockSvc "quizdash/internal/mocks/service"
	"quizdash/internal/usecase/session"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionFixtures struct {
	registry *session.Registry
	provider *mockSvc.MockIdentityProvider
	profiles *mockRepo.MockProfileRepository
}

// newTestRegistry builds a registry whose sessions share one mocked provider.
func newTestRegistry(t *testing.T, milestones []int) sessionFixtures {
	t.Helper()

	factory := mockSvc.NewMockIdentityProviderFactory(t)
	provider := mockSvc.NewMockIdentityProvider(t)
	profiles := mockRepo.NewMockProfileRepository(t)

	factory.EXPECT().NewSession().Return(provider).Maybe()
	provider.EXPECT().OnChange(mock.Anything).Return(service.Unsubscribe(func() {})).Maybe()

	registry, err := session.NewRegistry(factory, profiles, session.RegistryOptions{
		Guest:      session.GuestOptions{IDPrefix: "guest-", Email: "guest@example.com"},
		Milestones: milestones,
	}, newDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(registry.CloseAll)

	return sessionFixtures{registry: registry, provider: provider, profiles: profiles}
}

func (f sessionFixtures) open(t *testing.T) *session.Entry {
	t.Helper()

	entry, err := f.registry.Open()
	require.NoError(t, err)

	return entry
}

// signIn logs the entry in as uid-1 backed by the stored profile.
func (f sessionFixtures) signIn(t *testing.T, entry *session.Entry, stored *entity.User) {
	t.Helper()

	identity := &entity.Identity{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada"}
	f.provider.EXPECT().SignIn(mock.Anything, mock.AnythingOfType("entity.Credential")).Return(identity, nil).Once()
	f.profiles.EXPECT().Get(mock.Anything, "uid-1").Return(stored, nil).Once()

	_, err := entry.Store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
}

func storedProfile(currentStreak int, last time.Time) *entity.User {
	user := entity.NewDefaultUser(&entity.Identity{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada"})
	user.CurrentStreak = currentStreak
	user.MaxStreak = currentStreak
	if !last.IsZero() {
		user.LastQuizSubmissionDate = &last
	}

	return user
}
