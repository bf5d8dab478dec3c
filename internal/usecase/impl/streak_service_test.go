package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/errors"
	mockSvc "quizdash/internal/mocks/service"
	"quizdash/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streakServiceFixtures struct {
	sessionFixtures
	service *streakService
	qrcode  *mockSvc.MockQRCodeService
}

func createTestStreakService(t *testing.T) streakServiceFixtures {
	t.Helper()

	qrcode := mockSvc.NewMockQRCodeService(t)

	return streakServiceFixtures{
		sessionFixtures: newTestRegistry(t, nil),
		service:         NewStreakService(qrcode, newDiscardLogger()).(*streakService),
		qrcode:          qrcode,
	}
}

func TestStreakService_ObserveStreak(t *testing.T) {
	tests := []struct {
		name          string
		previous      int
		current       int
		wantReached   bool
		wantMilestone int
	}{
		{name: "reaching a milestone", previous: 2, current: 3, wantReached: true, wantMilestone: 3},
		{name: "jumping over a milestone", previous: 2, current: 5, wantReached: true, wantMilestone: 3},
		{name: "between milestones", previous: 5, current: 6},
		{name: "unchanged streak", previous: 6, current: 6},
		{name: "streak reset", previous: 8, current: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestStreakService(t)
			entry := f.open(t)

			out, err := f.service.ObserveStreak(context.Background(), entry, usecase.ObserveStreakInput{
				PreviousStreak: tt.previous,
				CurrentStreak:  tt.current,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantReached, out.Reached)
			assert.Equal(t, tt.wantMilestone, out.Milestone)
			assert.Equal(t, tt.wantReached, out.ShowMilestoneModal)
		})
	}
}

func TestStreakService_CloseMilestoneModal(t *testing.T) {
	f := createTestStreakService(t)
	entry := f.open(t)

	out, err := f.service.ObserveStreak(context.Background(), entry, usecase.ObserveStreakInput{PreviousStreak: 6, CurrentStreak: 7})
	require.NoError(t, err)
	require.True(t, out.ShowMilestoneModal)

	view, err := f.service.CloseMilestoneModal(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, view.ShowMilestoneModal)

	// a non-crossing transition leaves it hidden
	out, err = f.service.ObserveStreak(context.Background(), entry, usecase.ObserveStreakInput{PreviousStreak: 7, CurrentStreak: 8})
	require.NoError(t, err)
	assert.False(t, out.ShowMilestoneModal)
}

func TestStreakService_ObserveStreak_Negative(t *testing.T) {
	f := createTestStreakService(t)
	entry := f.open(t)

	_, err := f.service.ObserveStreak(context.Background(), entry, usecase.ObserveStreakInput{PreviousStreak: -1, CurrentStreak: 2})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestStreakService_ShareStreak(t *testing.T) {
	t.Run("signed-in user", func(t *testing.T) {
		f := createTestStreakService(t)
		entry := f.open(t)
		f.signIn(t, entry, storedProfile(12, time.Time{}))
		f.qrcode.EXPECT().GenerateStreakShareQR("uid-1", 12).Return([]byte("png"), nil)

		out, err := f.service.ShareStreak(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, []byte("png"), out.PNG)
		assert.Equal(t, 12, out.Days)
	})

	t.Run("signed out", func(t *testing.T) {
		f := createTestStreakService(t)

		_, err := f.service.ShareStreak(context.Background(), f.open(t))
		assert.True(t, errors.Is(err, domainerrors.ErrNotAuthenticated))
	})

	t.Run("guest", func(t *testing.T) {
		f := createTestStreakService(t)
		entry := f.open(t)
		_, err := entry.Store.LoginAsGuest(context.Background())
		require.NoError(t, err)

		_, err = f.service.ShareStreak(context.Background(), entry)
		assert.True(t, errors.Is(err, domainerrors.ErrGuestNotAllowed))
	})

	t.Run("render failure", func(t *testing.T) {
		f := createTestStreakService(t)
		entry := f.open(t)
		f.signIn(t, entry, storedProfile(1, time.Time{}))
		f.qrcode.EXPECT().GenerateStreakShareQR("uid-1", 1).Return(nil, errors.New("data too long"))

		_, err := f.service.ShareStreak(context.Background(), entry)
		require.Error(t, err)
	})
}
