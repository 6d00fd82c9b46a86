package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository interface for the questions of a quiz
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ListByQuiz returns questions ordered by position then id.
	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error)
	// ReplaceForQuiz deletes the quiz's questions and inserts the given ones in order.
	ReplaceForQuiz(ctx context.Context, tx *gorm.DB, quizID uint, questions []*models.Question) error
	NextPosition(ctx context.Context, tx *gorm.DB, quizID uint) (int, error)
}
