package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	CreatedBy *string            `json:"created_by"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "title", "available_until"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY AGGREGATE =====

// Repository groups the stores used by the services. Methods that take a tx
// run on it when non-nil and on the base connection otherwise.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Class() ClassRepository

	// WithTransaction runs fn inside one database transaction.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
