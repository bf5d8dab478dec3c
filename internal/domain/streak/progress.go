package streak

import (
	"math"
	"time"

	"quizdash/internal/domain/entity"
	"quizdash/internal/errors"
	"quizdash/internal/util"
)

// MaxScore is the highest score a quiz can award.
const MaxScore = 100

// Submission is one finished quiz.
type Submission struct {
	Score       float64
	WeakTopics  []string
	SubmittedAt time.Time
}

// ApplySubmission folds a quiz submission into the user's counters in place.
//
// Streaks count UTC calendar days: a second submission on the same day keeps the
// streak, the next day extends it, and the first submission or a gap restarts it at 1.
// A submission dated before the last one is counted but does not move the streak.
func ApplySubmission(user *entity.User, sub Submission) error {
	if math.IsNaN(sub.Score) || sub.Score < 0 || sub.Score > MaxScore {
		return errors.Errorf("score %f outside [0, %d]", sub.Score, MaxScore)
	}

	submittedAt := sub.SubmittedAt.UTC()

	switch {
	case user.LastQuizSubmissionDate == nil:
		user.CurrentStreak = 1
		user.LastQuizSubmissionDate = &submittedAt
	default:
		switch days := util.CalendarDaysBetween(*user.LastQuizSubmissionDate, submittedAt); {
		case days < 0:
		case days == 0:
			if user.CurrentStreak == 0 {
				user.CurrentStreak = 1
			}
			user.LastQuizSubmissionDate = &submittedAt
		case days == 1:
			user.CurrentStreak++
			user.LastQuizSubmissionDate = &submittedAt
		default:
			user.CurrentStreak = 1
			user.LastQuizSubmissionDate = &submittedAt
		}
	}

	user.MaxStreak = max(user.MaxStreak, user.CurrentStreak)

	attempted := float64(user.NumberOfTestsAttempted)
	user.AverageMarks = (user.AverageMarks*attempted + sub.Score) / (attempted + 1)
	user.NumberOfTestsAttempted++

	user.AddWeakTopics(sub.WeakTopics...)

	return user.Validate()
}
