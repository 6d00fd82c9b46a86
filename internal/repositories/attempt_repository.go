package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository interface for attempt records. Attempts are write-once.
type AttemptRepository interface {
	// Record assigns the next attempt number and inserts the attempt in one
	// serialised unit of work, re-checking the quiz's attempt limit and
	// incrementing its attempt counter. It fails with a persistence conflict
	// when the quiz is no longer at quizVersion, the version the attempt was
	// graded against.
	Record(ctx context.Context, attempt *models.QuizAttempt, quizVersion int) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error)
	CountByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID string, quizID uint) (int, error)
	CountByStudentForQuizzes(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) (map[uint]int, error)

	// ListByStudentAndQuiz is ordered by attempt number ascending.
	ListByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID string, quizID uint) ([]*models.QuizAttempt, error)
	// ListByQuiz is ordered by student then attempt number.
	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizAttempt, error)
}
