package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizAttempt is the immutable record of one graded submission.
type QuizAttempt struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	QuizID        uint   `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_student_attempt,priority:1;index"`
	StudentID     string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_quiz_student_attempt,priority:2;index"`
	AttemptNumber int    `json:"attempt_number" gorm:"not null;uniqueIndex:idx_quiz_student_attempt,priority:3"`

	RawAnswers    datatypes.JSON `json:"raw_answers" gorm:"type:jsonb"`
	GradedAnswers datatypes.JSON `json:"graded_answers" gorm:"type:jsonb"`

	Score            int     `json:"score" gorm:"not null"`
	MaxScore         int     `json:"max_score" gorm:"not null"`
	Percentage       float64 `json:"percentage" gorm:"not null"`
	Passed           bool    `json:"passed"`
	IsLate           bool    `json:"is_late"`
	OverTimeLimit    bool    `json:"over_time_limit"`
	NeedsReview      bool    `json:"needs_review"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`

	Quiz *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
