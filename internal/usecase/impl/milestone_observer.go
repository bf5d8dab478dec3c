// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "quizdash/internal/delivery/context"
	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/service"
	"quizdash/internal/usecase"
	"quizdash/internal/usecase/session"
)

// milestoneObserver turns session snapshots into views, feeding every user it
// sees to the session's detector and publishing crossings of signed-in users.
type milestoneObserver struct {
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func newMilestoneObserver(publisher service.EventPublisher, logger *slog.Logger) *milestoneObserver {
	return &milestoneObserver{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// view observes the current user and returns the resulting session view.
func (o *milestoneObserver) view(ctx context.Context, entry *session.Entry) *usecase.SessionView {
	obs := entry.ObserveCurrent()
	o.publish(ctx, entry, obs)

	return toSessionView(obs.Snapshot, entry)
}

func (o *milestoneObserver) publish(ctx context.Context, entry *session.Entry, obs session.Observation) {
	user := obs.Snapshot.CurrentUser
	if !obs.Reached || user.IsGuest {
		return
	}
	previous, milestone := obs.Previous, obs.Milestone

	logger := deliverycontext.GetLoggerOrDefault(ctx, o.logger)
	event := &entity.MilestoneEvent{
		RequestID:      deliverycontext.GetRequestIDFromContext(ctx),
		SessionID:      entry.ID.String(),
		UserID:         user.UID,
		DisplayName:    user.DisplayName,
		PreviousStreak: previous,
		CurrentStreak:  user.CurrentStreak,
		Milestone:      milestone,
		ReachedAt:      o.now().UTC(),
	}

	// publish failures do not fail the operation
	if err := o.publisher.PublishMilestoneEvent(ctx, event); err != nil {
		logger.Error("Failed to publish milestone event",
			slog.String("uid", user.UID),
			slog.Int("milestone", milestone),
			slog.Any("error", err),
		)

		return
	}

	logger.Info("Streak milestone reached",
		slog.String("uid", user.UID),
		slog.Int("milestone", milestone),
		slog.Int("current_streak", user.CurrentStreak),
	)
}

func toSessionView(snapshot entity.SessionSnapshot, entry *session.Entry) *usecase.SessionView {
	return &usecase.SessionView{
		CurrentUser:        snapshot.CurrentUser,
		Loading:            snapshot.Loading,
		State:              snapshot.State,
		ShowMilestoneModal: entry.Detector.Shown(),
	}
}
