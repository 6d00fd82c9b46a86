package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

// Create inserts the quiz together with its questions and class links.
func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	quiz.Status = models.QuizStatusDraft
	quiz.Version = 1
	quiz.AttemptCount = 0

	classes := quiz.Classes
	quiz.Classes = nil
	defer func() { quiz.Classes = classes }()

	db := conn(ctx, q.db, tx)
	if err := db.Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	ids := make([]uint, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return q.linkClasses(db, quiz.ID, ids)
}

// GetByID retrieves a quiz and its class assignment
func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := conn(ctx, q.db, tx).
		Preload("Classes").
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetByIDWithQuestions also loads questions in grading order
func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := conn(ctx, q.db, tx).
		Preload("Classes").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	if tx == nil {
		return nil, fmt.Errorf("row lock on quiz %d requires a transaction", id)
	}
	var quiz models.Quiz
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&quiz).Association("Classes").Find(&quiz.Classes); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Update saves quiz columns only and bumps the version
func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	quiz.Version++
	if err := conn(ctx, q.db, tx).Omit(clause.Associations).Save(quiz).Error; err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	return nil
}

// Delete soft-deletes the quiz and drops its questions and class links
func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := conn(ctx, q.db, tx)
	if err := db.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete quiz questions: %w", err)
	}
	if err := db.Where("quiz_id = ?", id).Delete(&models.QuizClass{}).Error; err != nil {
		return fmt.Errorf("failed to unlink quiz classes: %w", err)
	}
	result := db.Delete(&models.Quiz{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (q *QuizPostgreSQL) ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	filters.CreatedBy = &creatorID
	query := q.applyFilters(conn(ctx, q.db, tx).Model(&models.Quiz{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.applyPaginationAndSort(query, filters)
	if err := query.Preload("Classes").Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// ListPublishedForClasses returns published quizzes assigned to at least one of classIDs
func (q *QuizPostgreSQL) ListPublishedForClasses(ctx context.Context, tx *gorm.DB, classIDs []uint) ([]*models.Quiz, error) {
	if len(classIDs) == 0 {
		return []*models.Quiz{}, nil
	}

	db := conn(ctx, q.db, tx)
	assigned := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.QuizClass{}).
		Select("quiz_id").
		Where("class_id IN ?", classIDs)

	var quizzes []*models.Quiz
	if err := db.
		Where("status = ? AND id IN (?)", models.QuizStatusPublished, assigned).
		Preload("Classes").
		Order("created_at DESC, id DESC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.QuizStatus) error {
	return conn(ctx, q.db, tx).
		Model(&models.Quiz{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}).Error
}

func (q *QuizPostgreSQL) UpdateTotalPoints(ctx context.Context, tx *gorm.DB, id uint, totalPoints int) error {
	return conn(ctx, q.db, tx).
		Model(&models.Quiz{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_points": totalPoints,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		}).Error
}

// ReplaceClasses sets the quiz's class assignment to exactly classIDs
func (q *QuizPostgreSQL) ReplaceClasses(ctx context.Context, tx *gorm.DB, id uint, classIDs []uint) error {
	db := conn(ctx, q.db, tx)
	if err := db.Where("quiz_id = ?", id).Delete(&models.QuizClass{}).Error; err != nil {
		return fmt.Errorf("failed to unlink quiz classes: %w", err)
	}
	if err := db.Model(&models.Quiz{}).Where("id = ?", id).
		UpdateColumn("version", gorm.Expr("version + 1")).Error; err != nil {
		return fmt.Errorf("failed to bump quiz version: %w", err)
	}
	return q.linkClasses(db, id, classIDs)
}

func (q *QuizPostgreSQL) linkClasses(db *gorm.DB, quizID uint, classIDs []uint) error {
	if len(classIDs) == 0 {
		return nil
	}
	links := make([]models.QuizClass, 0, len(classIDs))
	for _, classID := range classIDs {
		links = append(links, models.QuizClass{QuizID: quizID, ClassID: classID})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link quiz classes: %w", err)
	}
	return nil
}

var quizSortColumns = map[string]string{
	"created_at":      "created_at",
	"title":           "title",
	"available_until": "available_until",
}

func (q *QuizPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}

func (q *QuizPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	column, ok := quizSortColumns[filters.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction).Order("id " + direction)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
