package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassPostgreSQL struct {
	db *gorm.DB
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{db: db}
}

func (c *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	if err := conn(ctx, c.db, tx).Create(class).Error; err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := conn(ctx, c.db, tx).Preload("Members").First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassPostgreSQL) CountExisting(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := conn(ctx, c.db, tx).Model(&models.Class{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// AddMembers is idempotent for users already in the class
func (c *ClassPostgreSQL) AddMembers(ctx context.Context, tx *gorm.DB, classID uint, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	members := make([]models.ClassMember, 0, len(userIDs))
	for _, userID := range userIDs {
		members = append(members, models.ClassMember{ClassID: classID, UserID: userID})
	}
	if err := conn(ctx, c.db, tx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&members).Error; err != nil {
		return fmt.Errorf("failed to add class members: %w", err)
	}
	return nil
}

func (c *ClassPostgreSQL) RemoveMember(ctx context.Context, tx *gorm.DB, classID uint, userID string) error {
	result := conn(ctx, c.db, tx).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Delete(&models.ClassMember{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove class member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (c *ClassPostgreSQL) ClassIDsForUser(ctx context.Context, tx *gorm.DB, userID string) ([]uint, error) {
	var ids []uint
	if err := conn(ctx, c.db, tx).
		Model(&models.ClassMember{}).
		Where("user_id = ?", userID).
		Order("class_id ASC").
		Pluck("class_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
