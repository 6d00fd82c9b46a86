package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := conn(ctx, q.db, tx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := conn(ctx, q.db, tx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := conn(ctx, q.db, tx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := conn(ctx, q.db, tx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (q *QuestionPostgreSQL) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := conn(ctx, q.db, tx).
		Where("quiz_id = ?", quizID).
		Order("position ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) ReplaceForQuiz(ctx context.Context, tx *gorm.DB, quizID uint, questions []*models.Question) error {
	db := conn(ctx, q.db, tx)
	if err := db.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to clear quiz questions: %w", err)
	}
	if len(questions) == 0 {
		return nil
	}
	for i, question := range questions {
		question.ID = 0
		question.QuizID = quizID
		question.Position = i
	}
	if err := db.Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to insert quiz questions: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) NextPosition(ctx context.Context, tx *gorm.DB, quizID uint) (int, error) {
	var next int
	if err := conn(ctx, q.db, tx).
		Model(&models.Question{}).
		Select("COALESCE(MAX(position), -1) + 1").
		Where("quiz_id = ?", quizID).
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
