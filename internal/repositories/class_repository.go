package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"gorm.io/gorm"
)

// ClassRepository interface for classes and their members
type ClassRepository interface {
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	// CountExisting returns how many of ids refer to existing classes.
	CountExisting(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error)

	AddMembers(ctx context.Context, tx *gorm.DB, classID uint, userIDs []string) error
	RemoveMember(ctx context.Context, tx *gorm.DB, classID uint, userID string) error
	ClassIDsForUser(ctx context.Context, tx *gorm.DB, userID string) ([]uint, error)
}
