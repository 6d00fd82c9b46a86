package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

// Record locks the quiz row so that concurrent submissions for the same quiz
// are serialised, then counts, checks the limit, inserts and bumps the
// quiz's counter before committing. The attempt was graded against
// quizVersion; any catalog change committed since then fails the record as
// a conflict. The unique index on (quiz_id, student_id, attempt_number)
// backs the numbering if the lock is ever bypassed.
func (a *AttemptPostgreSQL) Record(ctx context.Context, attempt *models.QuizAttempt, quizVersion int) error {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "version", "allowed_attempts", "attempt_count").
			First(&quiz, attempt.QuizID).Error; err != nil {
			return err
		}
		if quiz.Version != quizVersion {
			return fmt.Errorf("%w: quiz %d changed from version %d to %d",
				assessment.ErrPersistenceConflict, quiz.ID, quizVersion, quiz.Version)
		}

		var count int64
		if err := tx.Model(&models.QuizAttempt{}).
			Where("quiz_id = ? AND student_id = ?", attempt.QuizID, attempt.StudentID).
			Count(&count).Error; err != nil {
			return err
		}

		if err := assessment.CheckAttemptLimit(&quiz, int(count)); err != nil {
			return err
		}

		attempt.ID = 0
		attempt.AttemptNumber = int(count) + 1
		if err := tx.Omit(clause.Associations).Create(attempt).Error; err != nil {
			return err
		}

		return tx.Model(&models.Quiz{}).
			Where("id = ?", quiz.ID).
			UpdateColumn("attempt_count", gorm.Expr("attempt_count + ?", 1)).Error
	})
	if err != nil {
		attempt.AttemptNumber = 0
	}
	return translateRecordError(err)
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := conn(ctx, a.db, tx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) CountByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID string, quizID uint) (int, error) {
	var count int64
	if err := conn(ctx, a.db, tx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (a *AttemptPostgreSQL) CountByStudentForQuizzes(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(quizIDs))
	if len(quizIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		QuizID uint
		Total  int
	}
	if err := conn(ctx, a.db, tx).
		Model(&models.QuizAttempt{}).
		Select("quiz_id, COUNT(*) AS total").
		Where("student_id = ? AND quiz_id IN ?", studentID, quizIDs).
		Group("quiz_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.QuizID] = row.Total
	}
	return counts, nil
}

func (a *AttemptPostgreSQL) ListByStudentAndQuiz(ctx context.Context, tx *gorm.DB, studentID string, quizID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := conn(ctx, a.db, tx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	if err := conn(ctx, a.db, tx).
		Where("quiz_id = ?", quizID).
		Order("student_id ASC, attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
