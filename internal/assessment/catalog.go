package assessment

import (
	"fmt"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
)

var allowedTransitions = map[models.QuizStatus][]models.QuizStatus{
	models.QuizStatusDraft:     {models.QuizStatusPublished},
	models.QuizStatusPublished: {models.QuizStatusArchived},
	models.QuizStatusArchived:  {},
}

// Transition checks that a quiz may move from current to target.
func Transition(current, target models.QuizStatus) error {
	for _, allowed := range allowedTransitions[current] {
		if allowed == target {
			return nil
		}
	}
	return newRuleError(ErrInvalidTransition,
		fmt.Sprintf("cannot move quiz from %s to %s", current, target),
		map[string]interface{}{"from": current, "to": target})
}

// RecomputeTotalPoints sums question points with the default of one point applied.
func RecomputeTotalPoints(questions []*models.Question) int {
	total := 0
	for _, q := range questions {
		total += EffectivePoints(q.Points)
	}
	return total
}

// CanModify is false once any attempt exists, whatever the status.
func CanModify(quiz *models.Quiz) bool {
	return quiz.AttemptCount == 0
}

// CanDelete additionally requires the quiz to still be a draft.
func CanDelete(quiz *models.Quiz) bool {
	return quiz.Status == models.QuizStatusDraft && CanModify(quiz)
}

// EnsureModifiable returns ErrQuizNotModifiable with context when CanModify fails.
func EnsureModifiable(quiz *models.Quiz) error {
	if CanModify(quiz) {
		return nil
	}
	return newRuleError(ErrQuizNotModifiable, "",
		map[string]interface{}{"quiz_id": quiz.ID, "attempt_count": quiz.AttemptCount})
}

// EnsureDeletable returns ErrQuizNotDeletable with context when CanDelete fails.
func EnsureDeletable(quiz *models.Quiz) error {
	if CanDelete(quiz) {
		return nil
	}
	return newRuleError(ErrQuizNotDeletable, "",
		map[string]interface{}{"quiz_id": quiz.ID, "status": quiz.Status, "attempt_count": quiz.AttemptCount})
}
