// Package firestore stores profiles as documents of a Firestore collection keyed by uid.
package firestore

import (
	"context"
	"time"

	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/repository"
	"quizdash/internal/errors"

	gcfirestore "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// profileDocument is the stored shape of a profile document.
type profileDocument struct {
	UID                    string     `firestore:"uid"`
	Email                  string     `firestore:"email"`
	DisplayName            string     `firestore:"displayName"`
	PhotoURL               string     `firestore:"photoURL"`
	BookmarkedQuestions    []string   `firestore:"bookmarkedQuestions"`
	WeakTopics             []string   `firestore:"weakTopics"`
	AverageMarks           float64    `firestore:"averageMarks"`
	CurrentStreak          int        `firestore:"currentStreak"`
	MaxStreak              int        `firestore:"maxStreak"`
	LastQuizSubmissionDate *time.Time `firestore:"lastQuizSubmissionDate"`
	NumberOfTestsAttempted int        `firestore:"numberOfTestsAttempted"`
}

type profileRepository struct {
	client     *gcfirestore.Client
	collection string
}

// NewProfileRepository creates a profile repository over the given collection.
func NewProfileRepository(client *gcfirestore.Client, collection string) repository.ProfileRepository {
	return &profileRepository{
		client:     client,
		collection: collection,
	}
}

// Get reads the profile document of the uid.
func (repo *profileRepository) Get(ctx context.Context, uid string) (*entity.User, error) {
	snapshot, err := repo.client.Collection(repo.collection).Doc(uid).Get(ctx)
	if err != nil {
		return nil, getError(uid, err)
	}

	var doc profileDocument
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode profile document %s", uid)
	}

	return toProfileDomain(uid, &doc), nil
}

// Set overwrites the profile document of the uid.
func (repo *profileRepository) Set(ctx context.Context, uid string, user *entity.User) error {
	if _, err := repo.client.Collection(repo.collection).Doc(uid).Set(ctx, fromProfileDomain(uid, user)); err != nil {
		return errors.Wrapf(err, "failed to set profile document %s", uid)
	}

	return nil
}

// getError maps a missing document to repository.ErrProfileNotFound.
func getError(uid string, err error) error {
	if status.Code(err) == codes.NotFound {
		return repository.ErrProfileNotFound
	}

	return errors.Wrapf(err, "failed to get profile document %s", uid)
}

func toProfileDomain(uid string, doc *profileDocument) *entity.User {
	user := &entity.User{
		UID:                    uid,
		Email:                  doc.Email,
		DisplayName:            doc.DisplayName,
		PhotoURL:               doc.PhotoURL,
		BookmarkedQuestions:    nonNil(doc.BookmarkedQuestions),
		WeakTopics:             nonNil(doc.WeakTopics),
		AverageMarks:           doc.AverageMarks,
		CurrentStreak:          doc.CurrentStreak,
		MaxStreak:              doc.MaxStreak,
		NumberOfTestsAttempted: doc.NumberOfTestsAttempted,
	}

	if doc.LastQuizSubmissionDate != nil {
		last := doc.LastQuizSubmissionDate.UTC()
		user.LastQuizSubmissionDate = &last
	}

	return user
}

func fromProfileDomain(uid string, user *entity.User) *profileDocument {
	return &profileDocument{
		UID:                    uid,
		Email:                  user.Email,
		DisplayName:            user.DisplayName,
		PhotoURL:               user.PhotoURL,
		BookmarkedQuestions:    nonNil(user.BookmarkedQuestions),
		WeakTopics:             nonNil(user.WeakTopics),
		AverageMarks:           user.AverageMarks,
		CurrentStreak:          user.CurrentStreak,
		MaxStreak:              user.MaxStreak,
		LastQuizSubmissionDate: user.LastQuizSubmissionDate,
		NumberOfTestsAttempted: user.NumberOfTestsAttempted,
	}
}

// nonNil keeps empty collections stored as arrays instead of null.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return append([]string(nil), values...)
}
