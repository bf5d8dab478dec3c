// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"quizdash/internal/domain/entity"
	"quizdash/internal/domain/repository"
	"quizdash/internal/errors"
	"quizdash/internal/infra/persistence/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileRepository implements the repository.ProfileRepository interface using GORM.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// Get retrieves the stored profile of the given uid.
func (repo *profileRepository) Get(ctx context.Context, uid string) (*entity.User, error) {
	var profileM model.ProfileModel

	err := repo.db.WithContext(ctx).
		Where("uid = ?", uid).
		Take(&profileM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile by uid")
	}

	return toProfileDomain(&profileM), nil
}

// Set inserts the profile or replaces every column of an existing row.
func (repo *profileRepository) Set(ctx context.Context, uid string, user *entity.User) error {
	profileM := fromProfileDomain(uid, user)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns(profileUpdateColumns),
		}).
		Create(profileM).Error
	if err != nil {
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return errors.Wrapf(entity.ErrInvariantViolation, "profile %s rejected by constraint: %v", uid, err)
		}

		return errors.Wrap(err, "failed to upsert profile")
	}

	return nil
}

var profileUpdateColumns = []string{
	"email",
	"display_name",
	"photo_url",
	"bookmarked_questions",
	"weak_topics",
	"average_marks",
	"current_streak",
	"max_streak",
	"last_quiz_submission_date",
	"number_of_tests_attempted",
	"updated_at",
}

// --- Mapper functions ---

func toProfileDomain(data *model.ProfileModel) *entity.User {
	user := &entity.User{
		UID:                    data.UID,
		Email:                  data.Email,
		DisplayName:            data.DisplayName,
		PhotoURL:               data.PhotoURL,
		BookmarkedQuestions:    nonNil(data.BookmarkedQuestions),
		WeakTopics:             nonNil(data.WeakTopics),
		AverageMarks:           data.AverageMarks,
		CurrentStreak:          data.CurrentStreak,
		MaxStreak:              data.MaxStreak,
		NumberOfTestsAttempted: data.NumberOfTestsAttempted,
	}

	if data.LastQuizSubmissionDate != nil {
		last := data.LastQuizSubmissionDate.UTC()
		user.LastQuizSubmissionDate = &last
	}

	return user
}

func fromProfileDomain(uid string, user *entity.User) *model.ProfileModel {
	return &model.ProfileModel{
		UID:                    uid,
		Email:                  user.Email,
		DisplayName:            user.DisplayName,
		PhotoURL:               user.PhotoURL,
		BookmarkedQuestions:    datatypes.JSONSlice[string](nonNil(user.BookmarkedQuestions)),
		WeakTopics:             datatypes.JSONSlice[string](nonNil(user.WeakTopics)),
		AverageMarks:           user.AverageMarks,
		CurrentStreak:          user.CurrentStreak,
		MaxStreak:              user.MaxStreak,
		LastQuizSubmissionDate: user.LastQuizSubmissionDate,
		NumberOfTestsAttempted: user.NumberOfTestsAttempted,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return append([]string(nil), values...)
}
