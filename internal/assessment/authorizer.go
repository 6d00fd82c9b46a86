package assessment

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
)

// AuthorizeAttempt decides whether a student may start a new attempt at now.
// Checks run in a fixed order and stop at the first failure. On success it
// returns attemptCount unchanged so callers can derive the next number.
func AuthorizeAttempt(quiz *models.Quiz, studentClassIDs []uint, attemptCount int, now time.Time) (int, error) {
	if quiz.Status != models.QuizStatusPublished {
		return 0, newRuleError(ErrQuizNotAvailable, "",
			map[string]interface{}{"quiz_id": quiz.ID, "status": quiz.Status})
	}

	if !HasClassAccess(quiz, studentClassIDs) {
		return 0, newRuleError(ErrAccessDenied, "student is not in any class assigned to the quiz",
			map[string]interface{}{"quiz_id": quiz.ID})
	}

	if quiz.AvailableFrom != nil && now.Before(*quiz.AvailableFrom) {
		return 0, newRuleError(ErrNotYetAvailable, "",
			map[string]interface{}{"quiz_id": quiz.ID, "available_from": *quiz.AvailableFrom})
	}

	if quiz.AvailableUntil != nil && now.After(*quiz.AvailableUntil) {
		return 0, newRuleError(ErrExpired, "",
			map[string]interface{}{"quiz_id": quiz.ID, "available_until": *quiz.AvailableUntil})
	}

	if err := CheckAttemptLimit(quiz, attemptCount); err != nil {
		return 0, err
	}

	return attemptCount, nil
}

// CheckAttemptLimit fails once attemptCount reaches the quiz's allowed attempts.
func CheckAttemptLimit(quiz *models.Quiz, attemptCount int) error {
	if quiz.AllowedAttempts != nil && attemptCount >= *quiz.AllowedAttempts {
		return newRuleError(ErrAttemptLimitExceeded,
			fmt.Sprintf("%d of %d attempts used", attemptCount, *quiz.AllowedAttempts),
			map[string]interface{}{"quiz_id": quiz.ID, "allowed_attempts": *quiz.AllowedAttempts})
	}
	return nil
}

// HasClassAccess reports whether the student shares at least one class with the quiz.
func HasClassAccess(quiz *models.Quiz, studentClassIDs []uint) bool {
	if len(studentClassIDs) == 0 || len(quiz.Classes) == 0 {
		return false
	}
	member := make(map[uint]struct{}, len(studentClassIDs))
	for _, id := range studentClassIDs {
		member[id] = struct{}{}
	}
	for _, id := range quiz.ClassIDs() {
		if _, ok := member[id]; ok {
			return true
		}
	}
	return false
}

// AttemptsRemaining returns nil when attempts are unlimited.
func AttemptsRemaining(quiz *models.Quiz, attemptCount int) *int {
	if quiz.AllowedAttempts == nil {
		return nil
	}
	remaining := *quiz.AllowedAttempts - attemptCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
