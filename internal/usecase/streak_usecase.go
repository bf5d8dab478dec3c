package usecase

import (
	"context"

	"quizdash/internal/usecase/session"
)

// ObserveStreakInput is one streak transition to evaluate.
type ObserveStreakInput struct {
	PreviousStreak int
	CurrentStreak  int
}

// ObserveStreakOutput reports the detector decision for a transition.
type ObserveStreakOutput struct {
	Reached            bool `json:"reached"`
	Milestone          int  `json:"milestone,omitempty"`
	ShowMilestoneModal bool `json:"showMilestoneModal"`
}

// ShareOutput is a rendered share code.
type ShareOutput struct {
	UID  string
	Days int
	PNG  []byte
}

// StreakUsecase defines the milestone celebration and sharing operations.
type StreakUsecase interface {
	// ObserveStreak feeds a transition to the session's detector. Nothing is published.
	ObserveStreak(ctx context.Context, entry *session.Entry, input ObserveStreakInput) (*ObserveStreakOutput, error)

	// CloseMilestoneModal dismisses the celebration.
	CloseMilestoneModal(ctx context.Context, entry *session.Entry) (*SessionView, error)

	// ShareStreak renders a QR code linking to the current user's streak.
	ShareStreak(ctx context.Context, entry *session.Entry) (*ShareOutput, error)
}
