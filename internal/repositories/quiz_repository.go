package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"gorm.io/gorm"
)

// QuizRepository interface for quiz catalog operations
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	// GetByIDForUpdate locks the quiz row until tx ends.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	ListByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters QuizFilters) ([]*models.Quiz, int64, error)
	ListPublishedForClasses(ctx context.Context, tx *gorm.DB, classIDs []uint) ([]*models.Quiz, error)

	// Aggregates and relations
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.QuizStatus) error
	UpdateTotalPoints(ctx context.Context, tx *gorm.DB, id uint, totalPoints int) error
	ReplaceClasses(ctx context.Context, tx *gorm.DB, id uint, classIDs []uint) error
}
