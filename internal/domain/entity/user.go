// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"math"
	"slices"
	"time"

	"quizdash/internal/errors"
)

// ErrInvariantViolation is returned by Validate when a user record breaks a counter invariant.
var ErrInvariantViolation = errors.New("user invariant violated")

// User is the reconciled identity record shown to a client: identity provider
// claims merged with the durable study profile.
type User struct {
	UID                    string     `json:"uid"`                    // Stable identifier assigned by the identity provider.
	Email                  string     `json:"email"`                  // Empty when the provider has no email for the identity.
	DisplayName            string     `json:"displayName"`            // Presentation name; provider value preferred when non-empty.
	PhotoURL               string     `json:"photoURL"`               // Avatar URL; provider value preferred when non-empty.
	IsGuest                bool       `json:"isGuest"`                // True only for locally synthesized, never persisted sessions.
	BookmarkedQuestions    []string   `json:"bookmarkedQuestions"`    // Set of question ids, order irrelevant.
	WeakTopics             []string   `json:"weakTopics"`             // Set of topic ids.
	AverageMarks           float64    `json:"averageMarks"`           // Running mean of quiz scores.
	CurrentStreak          int        `json:"currentStreak"`          // Consecutive days with a quiz submission.
	MaxStreak              int        `json:"maxStreak"`              // Longest streak ever reached.
	LastQuizSubmissionDate *time.Time `json:"lastQuizSubmissionDate"` // Nil until the first submission.
	NumberOfTestsAttempted int        `json:"numberOfTestsAttempted"` // Quiz submissions counter.
}

// NewDefaultUser builds the profile created the first time an identity authenticates:
// identity fields plus zeroed counters and empty collections.
func NewDefaultUser(identity *Identity) *User {
	return &User{
		UID:                 identity.UID,
		Email:               identity.Email,
		DisplayName:         identity.DisplayName,
		PhotoURL:            identity.PhotoURL,
		BookmarkedQuestions: []string{},
		WeakTopics:          []string{},
	}
}

// NewGuestUser builds an ephemeral guest user with default counters.
func NewGuestUser(uid, email string) *User {
	return &User{
		UID:                 uid,
		Email:               email,
		IsGuest:             true,
		BookmarkedQuestions: []string{},
		WeakTopics:          []string{},
	}
}

// MergeIdentity combines a stored profile with fresh identity claims.
// Stored fields win except display name and photo URL, where a non-empty
// identity value wins. UID and email always come from the identity.
func MergeIdentity(stored *User, identity *Identity) *User {
	merged := stored.Clone()
	merged.UID = identity.UID
	merged.Email = identity.Email

	if identity.DisplayName != "" {
		merged.DisplayName = identity.DisplayName
	}

	if identity.PhotoURL != "" {
		merged.PhotoURL = identity.PhotoURL
	}

	return merged
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	clone := *u
	clone.BookmarkedQuestions = cloneSet(u.BookmarkedQuestions)
	clone.WeakTopics = cloneSet(u.WeakTopics)

	if u.LastQuizSubmissionDate != nil {
		last := *u.LastQuizSubmissionDate
		clone.LastQuizSubmissionDate = &last
	}

	return &clone
}

// ToggleBookmark adds the question to the bookmarks, or removes it when already present.
// It reports whether the question is bookmarked afterwards.
func (u *User) ToggleBookmark(questionID string) bool {
	if idx := slices.Index(u.BookmarkedQuestions, questionID); idx >= 0 {
		u.BookmarkedQuestions = slices.Delete(u.BookmarkedQuestions, idx, idx+1)

		return false
	}

	u.BookmarkedQuestions = append(u.BookmarkedQuestions, questionID)

	return true
}

// AddWeakTopics adds topics not already in the set.
func (u *User) AddWeakTopics(topics ...string) {
	for _, topic := range topics {
		if topic == "" || slices.Contains(u.WeakTopics, topic) {
			continue
		}
		u.WeakTopics = append(u.WeakTopics, topic)
	}
}

// Validate checks the counter invariants of the record.
func (u *User) Validate() error {
	switch {
	case u.CurrentStreak < 0:
		return errors.Wrapf(ErrInvariantViolation, "currentStreak %d is negative", u.CurrentStreak)
	case u.MaxStreak < u.CurrentStreak:
		return errors.Wrapf(ErrInvariantViolation, "maxStreak %d below currentStreak %d", u.MaxStreak, u.CurrentStreak)
	case u.NumberOfTestsAttempted < 0:
		return errors.Wrapf(ErrInvariantViolation, "numberOfTestsAttempted %d is negative", u.NumberOfTestsAttempted)
	case u.AverageMarks < 0:
		return errors.Wrapf(ErrInvariantViolation, "averageMarks %f is negative", u.AverageMarks)
	case math.IsNaN(u.AverageMarks) || math.IsInf(u.AverageMarks, 0):
		return errors.Wrapf(ErrInvariantViolation, "averageMarks %f is not finite", u.AverageMarks)
	}

	return nil
}

func cloneSet(values []string) []string {
	if values == nil {
		return []string{}
	}

	return slices.Clone(values)
}
