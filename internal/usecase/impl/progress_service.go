package impl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	deliverycontext "quizdash/internal/delivery/context"
	"quizdash/internal/domain/entity"
	domainerrors "quizdash/internal/domain/errors"
	"quizdash/internal/domain/service"
	"quizdash/internal/domain/streak"
	"quizdash/internal/usecase"
	"quizdash/internal/usecase/session"

	"github.com/pkg/errors"
)

// maxSubmissionSkew is how far ahead of server time a submission may be dated.
const maxSubmissionSkew = 5 * time.Minute

type progressService struct {
	observer *milestoneObserver
	logger   *slog.Logger
	now      func() time.Time
}

// NewProgressService creates the progress usecase.
func NewProgressService(publisher service.EventPublisher, logger *slog.Logger) usecase.ProgressUsecase {
	return &progressService{
		observer: newMilestoneObserver(publisher, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// RecordQuizSubmission folds a finished quiz into the current user's progress.
func (srv *progressService) RecordQuizSubmission(
	ctx context.Context,
	entry *session.Entry,
	input usecase.RecordSubmissionInput,
) (*usecase.SessionView, error) {
	if math.IsNaN(input.Score) || input.Score < 0 || input.Score > streak.MaxScore {
		return nil, domainerrors.ErrValidationFailed.WrapMessage(fmt.Sprintf("score must be between 0 and %d", streak.MaxScore))
	}

	now := srv.now()
	submission := streak.Submission{
		Score:       input.Score,
		WeakTopics:  input.WeakTopics,
		SubmittedAt: input.SubmittedAt,
	}
	switch {
	case submission.SubmittedAt.IsZero():
		submission.SubmittedAt = now
	case submission.SubmittedAt.After(now.Add(maxSubmissionSkew)):
		return nil, domainerrors.ErrValidationFailed.WrapMessage("submittedAt is in the future")
	}

	user, err := entry.Store.Update(ctx, func(user *entity.User) error {
		return streak.ApplySubmission(user, submission)
	})
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Error("Failed to record quiz submission", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to record quiz submission")
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Debug("Quiz submission recorded",
		slog.String("uid", user.UID),
		slog.Int("current_streak", user.CurrentStreak),
		slog.Int("attempts", user.NumberOfTestsAttempted),
	)

	return srv.observer.view(ctx, entry), nil
}

// ToggleBookmark adds or removes a bookmarked question.
func (srv *progressService) ToggleBookmark(ctx context.Context, entry *session.Entry, questionID string) (*usecase.ToggleBookmarkOutput, error) {
	if questionID == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("question id is required")
	}

	var bookmarked bool
	if _, err := entry.Store.Update(ctx, func(user *entity.User) error {
		bookmarked = user.ToggleBookmark(questionID)

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "failed to toggle bookmark")
	}

	return &usecase.ToggleBookmarkOutput{
		QuestionID: questionID,
		Bookmarked: bookmarked,
		Session:    srv.observer.view(ctx, entry),
	}, nil
}
