package impl

import (
	"context"
	"log/slog"

	deliverycontext "quizdash/internal/delivery/context"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/service"
	"quizdash/internal/usecase"
	"quizdash/internal/usecase/session"

	"github.com/pkg/errors"
)

type streakService struct {
	qrcode service.QRCodeService
	logger *slog.Logger
}

// NewStreakService creates the streak usecase.
func NewStreakService(qrcode service.QRCodeService, logger *slog.Logger) usecase.StreakUsecase {
	return &streakService{
		qrcode: qrcode,
		logger: logger,
	}
}

// ObserveStreak evaluates a transition on the session's detector.
func (srv *streakService) ObserveStreak(
	_ context.Context,
	entry *session.Entry,
	input usecase.ObserveStreakInput,
) (*usecase.ObserveStreakOutput, error) {
	if input.PreviousStreak < 0 || input.CurrentStreak < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("streaks must not be negative")
	}

	milestone, reached := entry.Detector.Observe(input.PreviousStreak, input.CurrentStreak)

	return &usecase.ObserveStreakOutput{
		Reached:            reached,
		Milestone:          milestone,
		ShowMilestoneModal: entry.Detector.Shown(),
	}, nil
}

// CloseMilestoneModal hides the celebration.
func (srv *streakService) CloseMilestoneModal(_ context.Context, entry *session.Entry) (*usecase.SessionView, error) {
	entry.Detector.Close()

	return toSessionView(entry.Store.Snapshot(), entry), nil
}

// ShareStreak renders the share code of the current user's streak.
func (srv *streakService) ShareStreak(ctx context.Context, entry *session.Entry) (*usecase.ShareOutput, error) {
	user := entry.Store.CurrentUser()
	switch {
	case user == nil:
		return nil, domainerrors.ErrNotAuthenticated
	case user.IsGuest:
		return nil, domainerrors.ErrGuestNotAllowed.WrapMessage("guests cannot share streaks")
	}

	png, err := srv.qrcode.GenerateStreakShareQR(user.UID, user.CurrentStreak)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Error("Failed to render share code",
			slog.String("uid", user.UID),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to render share code")
	}

	return &usecase.ShareOutput{UID: user.UID, Days: user.CurrentStreak, PNG: png}, nil
}
