package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/repository"
	"quizdash/internal/errors"
	mockRepo "quizdash/internal/mocks/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testGuest = GuestOptions{IDPrefix: "guest-", Email: "guest@example.com"}

func createTestStore(t *testing.T, identity *fakeIdentity, profiles *mockRepo.MockProfileRepository) *Store {
	t.Helper()

	store := NewStore(identity, profiles, testGuest, newDiscardLogger())
	t.Cleanup(store.Close)

	return store
}

func adaIdentity() *entity.Identity {
	return &entity.Identity{UID: "uid-1", Email: "ada@example.com", DisplayName: "Ada"}
}

func waitIdle(t *testing.T, store *Store) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, store.WaitIdle(ctx))
}

func TestStore_Login_MergesStoredProfile(t *testing.T) {
	profiles := mockRepo.NewMockProfileRepository(t)
	identity := newFakeIdentity(adaIdentity())
	store := createTestStore(t, identity, profiles)

	stored := &entity.User{
		UID:                 "uid-1",
		Email:               "old@example.com",
		DisplayName:         "Old Name",
		PhotoURL:            "https://example.com/stored.png",
		BookmarkedQuestions: []string{"q1"},
		WeakTopics:          []string{},
		CurrentStreak:       7,
		MaxStreak:           9,
	}
	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(stored, nil)

	user, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.UID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.DisplayName)
	assert.Equal(t, "https://example.com/stored.png", user.PhotoURL)
	assert.Equal(t, 7, user.CurrentStreak)
	assert.Equal(t, []string{"q1"}, user.BookmarkedQuestions)

	snapshot := store.Snapshot()
	assert.False(t, snapshot.Loading)
	assert.Equal(t, entity.SessionAuthenticated, snapshot.State)
	assert.Equal(t, user, snapshot.CurrentUser)
}

func TestStore_Login_CreatesDefaultProfile(t *testing.T) {
	profiles := mockRepo.NewMockProfileRepository(t)
	identity := newFakeIdentity(adaIdentity())
	store := createTestStore(t, identity, profiles)

	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(nil, repository.ErrProfileNotFound)
	profiles.EXPECT().
		Set(mock.Anything, "uid-1", mock.MatchedBy(func(u *entity.User) bool {
			return u.CurrentStreak == 0 && u.NumberOfTestsAttempted == 0 && !u.IsGuest && u.DisplayName == "Ada"
		})).
		Return(nil)

	user, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.UID)
	assert.Empty(t, user.BookmarkedQuestions)
	assert.Nil(t, user.LastQuizSubmissionDate)
	assert.False(t, store.Loading())
}

func TestStore_Register_StoresDefaultProfile(t *testing.T) {
	profiles := mockRepo.NewMockProfileRepository(t)
	identity := newFakeIdentity(adaIdentity())
	store := createTestStore(t, identity, profiles)

	// the sign-up announcement may be reconciled before the explicit create
	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(nil, repository.ErrProfileNotFound).Maybe()
	profiles.EXPECT().Set(mock.Anything, "uid-1", mock.AnythingOfType("*entity.User")).Return(nil)

	user, err := store.Register(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.UID)
	assert.Zero(t, user.MaxStreak)
	assert.Equal(t, entity.SessionAuthenticated, store.Snapshot().State)
}

func TestStore_Login_Errors(t *testing.T) {
	tests := []struct {
		name      string
		signInErr error
		getErr    error
		wantErr   error
	}{
		{
			name:      "rejected credentials",
			signInErr: domainerrors.ErrInvalidCredentials.WrapMessage("bad password"),
			wantErr:   domainerrors.ErrInvalidCredentials,
		},
		{
			name:      "provider unavailable",
			signInErr: errors.New("connection reset"),
			wantErr:   domainerrors.ErrIdentityProvider,
		},
		{
			name:    "profile storage unavailable",
			getErr:  errors.New("deadline exceeded"),
			wantErr: domainerrors.ErrProfileStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := mockRepo.NewMockProfileRepository(t)
			identity := newFakeIdentity(adaIdentity())
			identity.signInErr = tt.signInErr
			store := createTestStore(t, identity, profiles)

			if tt.getErr != nil {
				profiles.EXPECT().Get(mock.Anything, "uid-1").Return(nil, tt.getErr)
			}

			user, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "wrong"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Nil(t, user)

			waitIdle(t, store)
			snapshot := store.Snapshot()
			assert.Nil(t, snapshot.CurrentUser)
			assert.False(t, snapshot.Loading)
			assert.Equal(t, entity.SessionUnauthenticated, snapshot.State)
		})
	}
}

func TestStore_FailedLoginKeepsCurrentUser(t *testing.T) {
	tests := []struct {
		name      string
		signInErr error
		getErr    error
		wantErr   error
	}{
		{
			name:      "rejected credentials",
			signInErr: domainerrors.ErrInvalidCredentials.WrapMessage("bad password"),
			wantErr:   domainerrors.ErrInvalidCredentials,
		},
		{
			name:    "profile storage unavailable",
			getErr:  errors.New("deadline exceeded"),
			wantErr: domainerrors.ErrProfileStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := mockRepo.NewMockProfileRepository(t)
			identity := newFakeIdentity(adaIdentity())
			store := createTestStore(t, identity, profiles)

			stored := entity.NewDefaultUser(adaIdentity())
			stored.CurrentStreak = 5
			profiles.EXPECT().Get(mock.Anything, "uid-1").Return(stored, nil).Once()

			identity.emit(adaIdentity())
			waitIdle(t, store)
			require.NotNil(t, store.CurrentUser())

			identity.signInErr = tt.signInErr
			if tt.getErr != nil {
				// the sign-in announcement is reconciled before the explicit profile read
				profiles.EXPECT().Get(mock.Anything, "uid-1").Return(stored, nil).Once()
				profiles.EXPECT().Get(mock.Anything, "uid-1").Return(nil, tt.getErr).Once()
			}

			_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "wrong"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))

			user := store.CurrentUser()
			require.NotNil(t, user)
			assert.Equal(t, "uid-1", user.UID)
			assert.Equal(t, 5, user.CurrentStreak)
			assert.False(t, store.Loading())
		})
	}
}

func TestStore_LoginAsGuest(t *testing.T) {
	// no expectations: guests never touch storage
	profiles := mockRepo.NewMockProfileRepository(t)
	store := createTestStore(t, newFakeIdentity(adaIdentity()), profiles)

	first, err := store.LoginAsGuest(context.Background())
	require.NoError(t, err)
	second, err := store.LoginAsGuest(context.Background())
	require.NoError(t, err)

	assert.True(t, first.IsGuest)
	assert.True(t, strings.HasPrefix(first.UID, "guest-"))
	assert.Equal(t, "guest@example.com", first.Email)
	assert.NotEqual(t, first.UID, second.UID)
	assert.Equal(t, second.UID, store.CurrentUser().UID)

	updated, err := store.Update(context.Background(), func(u *entity.User) error {
		u.ToggleBookmark("q9")

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"q9"}, updated.BookmarkedQuestions)
}

func TestStore_Logout(t *testing.T) {
	t.Run("clears user after sign-out", func(t *testing.T) {
		profiles := mockRepo.NewMockProfileRepository(t)
		identity := newFakeIdentity(adaIdentity())
		store := createTestStore(t, identity, profiles)
		profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)

		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)

		require.NoError(t, store.Logout(context.Background()))

		assert.Nil(t, store.CurrentUser())
		assert.Equal(t, entity.SessionUnauthenticated, store.Snapshot().State)
		assert.Equal(t, 1, identity.signOutCount())
	})

	t.Run("failed sign-out keeps user", func(t *testing.T) {
		profiles := mockRepo.NewMockProfileRepository(t)
		identity := newFakeIdentity(adaIdentity())
		store := createTestStore(t, identity, profiles)
		profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)

		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)

		identity.signOutErr = errors.New("network down")
		err = store.Logout(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrIdentityProvider))

		require.NotNil(t, store.CurrentUser())
		assert.Equal(t, "uid-1", store.CurrentUser().UID)
		assert.False(t, store.Loading())
	})

	t.Run("guest logout signs out earlier login", func(t *testing.T) {
		profiles := mockRepo.NewMockProfileRepository(t)
		identity := newFakeIdentity(adaIdentity())
		store := createTestStore(t, identity, profiles)
		profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)

		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)
		_, err = store.LoginAsGuest(context.Background())
		require.NoError(t, err)

		require.NoError(t, store.Logout(context.Background()))
		assert.Nil(t, store.CurrentUser())
		assert.Equal(t, 1, identity.signOutCount())
	})

	t.Run("guest only session", func(t *testing.T) {
		identity := newFakeIdentity(adaIdentity())
		store := createTestStore(t, identity, mockRepo.NewMockProfileRepository(t))

		_, err := store.LoginAsGuest(context.Background())
		require.NoError(t, err)

		require.NoError(t, store.Logout(context.Background()))
		assert.Nil(t, store.CurrentUser())
		assert.Equal(t, 1, identity.signOutCount())
	})
}

func TestStore_IdentityEvents(t *testing.T) {
	profiles := mockRepo.NewMockProfileRepository(t)
	identity := newFakeIdentity(adaIdentity())
	store := createTestStore(t, identity, profiles)

	stored := entity.NewDefaultUser(adaIdentity())
	stored.CurrentStreak = 2
	stored.MaxStreak = 2
	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(stored, nil).Once()
	profiles.EXPECT().Get(mock.Anything, "uid-2").Return(nil, errors.New("storage offline")).Once()

	identity.emit(adaIdentity())
	waitIdle(t, store)

	user := store.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, 2, user.CurrentStreak)
	assert.False(t, store.Loading())

	// a failed reconciliation resolves to signed out
	identity.emit(&entity.Identity{UID: "uid-2"})
	waitIdle(t, store)
	assert.Nil(t, store.CurrentUser())

	identity.emit(nil)
	waitIdle(t, store)
	assert.Nil(t, store.CurrentUser())
	assert.Equal(t, entity.SessionUnauthenticated, store.Snapshot().State)
}

func TestStore_RejectsConcurrentOperations(t *testing.T) {
	profiles := mockRepo.NewMockProfileRepository(t)
	identity := newFakeIdentity(adaIdentity())
	identity.entered = make(chan struct{})
	identity.release = make(chan struct{})
	store := createTestStore(t, identity, profiles)
	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)

	done := make(chan error, 1)
	go func() {
		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		done <- err
	}()

	<-identity.entered
	assert.True(t, store.Loading())

	_, err := store.LoginAsGuest(context.Background())
	assert.True(t, errors.Is(err, domainerrors.ErrSessionBusy))

	close(identity.release)
	require.NoError(t, <-done)

	assert.False(t, store.Loading())
	assert.Equal(t, "uid-1", store.CurrentUser().UID)
}

func TestStore_Update(t *testing.T) {
	t.Run("requires a user", func(t *testing.T) {
		store := createTestStore(t, newFakeIdentity(adaIdentity()), mockRepo.NewMockProfileRepository(t))

		_, err := store.Update(context.Background(), func(*entity.User) error { return nil })
		assert.True(t, errors.Is(err, domainerrors.ErrNotAuthenticated))
	})

	t.Run("persists and swaps", func(t *testing.T) {
		profiles := mockRepo.NewMockProfileRepository(t)
		store := createTestStore(t, newFakeIdentity(adaIdentity()), profiles)
		profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)
		profiles.EXPECT().
			Set(mock.Anything, "uid-1", mock.MatchedBy(func(u *entity.User) bool { return len(u.BookmarkedQuestions) == 1 })).
			Return(nil).
			Once()

		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)

		updated, err := store.Update(context.Background(), func(u *entity.User) error {
			u.ToggleBookmark("q1")

			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"q1"}, updated.BookmarkedQuestions)
		assert.Equal(t, []string{"q1"}, store.CurrentUser().BookmarkedQuestions)
	})

	t.Run("invariant violation leaves user untouched", func(t *testing.T) {
		profiles := mockRepo.NewMockProfileRepository(t)
		store := createTestStore(t, newFakeIdentity(adaIdentity()), profiles)
		profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)

		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)

		_, err = store.Update(context.Background(), func(u *entity.User) error {
			u.CurrentStreak = -1

			return u.Validate()
		})
		assert.True(t, errors.Is(err, domainerrors.ErrInvariantViolation))
		assert.Zero(t, store.CurrentUser().CurrentStreak)
	})

	t.Run("storage failure is reported", func(t *testing.T) {
		profiles := mockRepo.NewMockProfileRepository(t)
		store := createTestStore(t, newFakeIdentity(adaIdentity()), profiles)
		profiles.EXPECT().Get(mock.Anything, "uid-1").Return(entity.NewDefaultUser(adaIdentity()), nil)
		profiles.EXPECT().Set(mock.Anything, "uid-1", mock.Anything).Return(errors.New("write failed"))

		_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)

		_, err = store.Update(context.Background(), func(u *entity.User) error {
			u.ToggleBookmark("q1")

			return nil
		})
		assert.True(t, errors.Is(err, domainerrors.ErrProfileStorage))
		assert.Empty(t, store.CurrentUser().BookmarkedQuestions)
	})
}

func TestStore_Refresh(t *testing.T) {
	profiles := mockRepo.NewMockProfileRepository(t)
	store := createTestStore(t, newFakeIdentity(adaIdentity()), profiles)

	initial := entity.NewDefaultUser(adaIdentity())
	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(initial, nil).Times(2)

	_, err := store.Login(context.Background(), entity.Credential{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	advanced := initial.Clone()
	advanced.CurrentStreak = 3
	advanced.MaxStreak = 3
	profiles.EXPECT().Get(mock.Anything, "uid-1").Return(advanced, nil).Once()

	user, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, user.CurrentStreak)
	assert.Equal(t, "Ada", user.DisplayName)
}

func TestStore_Close_ReleasesSubscription(t *testing.T) {
	identity := newFakeIdentity(adaIdentity())
	store := NewStore(identity, mockRepo.NewMockProfileRepository(t), testGuest, newDiscardLogger())
	require.Equal(t, 1, identity.subscribers())

	store.Close()
	store.Close()

	assert.Zero(t, identity.subscribers())
	assert.NoError(t, store.WaitIdle(context.Background()))
}
