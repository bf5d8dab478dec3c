package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileModel mirrors the 'profiles' table, one row per identity provider uid.
// The check constraints back the streak and counter invariants.
type ProfileModel struct {
	UID                    string                      `gorm:"type:varchar(128);primaryKey"`
	Email                  string                      `gorm:"type:varchar(255)"`
	DisplayName            string                      `gorm:"type:varchar(255)"`
	PhotoURL               string                      `gorm:"type:text"`
	BookmarkedQuestions    datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	WeakTopics             datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	AverageMarks           float64                     `gorm:"not null;default:0;check:chk_profiles_average_marks,average_marks >= 0"`
	CurrentStreak          int                         `gorm:"not null;default:0;check:chk_profiles_current_streak,current_streak >= 0"`
	MaxStreak              int                         `gorm:"not null;default:0;check:chk_profiles_max_streak,max_streak >= current_streak"`
	LastQuizSubmissionDate *time.Time
	NumberOfTestsAttempted int `gorm:"not null;default:0;check:chk_profiles_tests_attempted,number_of_tests_attempted >= 0"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProfileModel) TableName() string {
	return "profiles"
}
