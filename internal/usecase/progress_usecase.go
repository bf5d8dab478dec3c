package usecase

import (
	"context"
	"time"

	"quizdash/internal/usecase/session"
)

// RecordSubmissionInput defines a finished quiz. A zero SubmittedAt means now.
type RecordSubmissionInput struct {
	Score       float64
	WeakTopics  []string
	SubmittedAt time.Time
}

// ToggleBookmarkOutput reports the bookmark state after a toggle.
type ToggleBookmarkOutput struct {
	QuestionID string       `json:"questionId"`
	Bookmarked bool         `json:"bookmarked"`
	Session    *SessionView `json:"session"`
}

// ProgressUsecase defines the operations that change a user's study progress.
type ProgressUsecase interface {
	RecordQuizSubmission(ctx context.Context, entry *session.Entry, input RecordSubmissionInput) (*SessionView, error)
	ToggleBookmark(ctx context.Context, entry *session.Entry, questionID string) (*ToggleBookmarkOutput, error)
}
