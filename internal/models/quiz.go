package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizStatusDraft     QuizStatus = "Draft"
	QuizStatusPublished QuizStatus = "Published"
	QuizStatusArchived  QuizStatus = "Archived"
)

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index"`
	Description *string    `json:"description" gorm:"type:text"`
	Status      QuizStatus `json:"status" gorm:"default:Draft;index;size:20"`

	// Attempt rules
	TimeLimit       *int       `json:"time_limit"`       // minutes
	AllowedAttempts *int       `json:"allowed_attempts"` // nil means unlimited
	PassingScore    *int       `json:"passing_score"`    // percentage, nil means no gate
	AvailableFrom   *time.Time `json:"available_from"`
	AvailableUntil  *time.Time `json:"available_until"`

	// Presentation and integrity flags, never graded
	ShuffleQuestions bool `json:"shuffle_questions" gorm:"default:false"`
	RandomizeOptions bool `json:"randomize_options" gorm:"default:false"`
	FullscreenMode   bool `json:"fullscreen_mode" gorm:"default:false"`
	DisableCopyPaste bool `json:"disable_copy_paste" gorm:"default:false"`
	ShowResults      bool `json:"show_results" gorm:"default:false"`

	// Aggregates maintained by the catalog and the attempt recorder
	TotalPoints  int `json:"total_points" gorm:"not null;default:0"`
	AttemptCount int `json:"attempt_count" gorm:"not null;default:0"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	Version   int            `json:"version" gorm:"default:1"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Classes   []Class    `json:"classes,omitempty" gorm:"many2many:quiz_classes;constraint:OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// ClassIDs returns the ids of the classes the quiz is assigned to.
func (q *Quiz) ClassIDs() []uint {
	ids := make([]uint, 0, len(q.Classes))
	for _, class := range q.Classes {
		ids = append(ids, class.ID)
	}
	return ids
}

// QuizClass is a row of the quiz_classes join table behind Quiz.Classes.
type QuizClass struct {
	QuizID  uint `gorm:"primaryKey"`
	ClassID uint `gorm:"primaryKey;index"`
}

func (QuizClass) TableName() string {
	return "quiz_classes"
}
