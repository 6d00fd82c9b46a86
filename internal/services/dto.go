package services

import (
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
)

// ===== QUIZ REQUESTS =====

type CreateQuizRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	QuizSettings
	Questions []QuestionRequest `json:"questions" validate:"omitempty,max=200,dive"`
	ClassIDs  []uint            `json:"class_ids" validate:"omitempty,dive,min=1"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	QuizSettings
}

// QuizSettings holds the attempt rules and presentation flags shared by create and update
type QuizSettings struct {
	TimeLimit       *int       `json:"time_limit" validate:"omitempty,min=1,max=1440"`
	AllowedAttempts *int       `json:"allowed_attempts" validate:"omitempty,min=1,max=100"`
	PassingScore    *int       `json:"passing_score" validate:"omitempty,min=0,max=100"`
	AvailableFrom   *time.Time `json:"available_from"`
	AvailableUntil  *time.Time `json:"available_until"`

	ShuffleQuestions *bool `json:"shuffle_questions"`
	RandomizeOptions *bool `json:"randomize_options"`
	FullscreenMode   *bool `json:"fullscreen_mode"`
	DisableCopyPaste *bool `json:"disable_copy_paste"`
	ShowResults      *bool `json:"show_results"`
}

type QuestionRequest struct {
	Type         models.QuestionType `json:"type" validate:"required,question_type"`
	Prompt       string              `json:"prompt" validate:"required,max=5000"`
	Options      []string            `json:"options"`
	CorrectIndex *int                `json:"correct_index"`
	CorrectText  *string             `json:"correct_text"`
	Points       *int                `json:"points" validate:"omitempty,min=1,max=100"`
	Explanation  *string             `json:"explanation" validate:"omitempty,max=5000"`
}

type ReplaceQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" validate:"max=200,dive"`
}

type AssignClassesRequest struct {
	ClassIDs []uint `json:"class_ids" validate:"dive,min=1"`
}

// ===== QUIZ RESPONSES =====

// QuizResponse is the instructor view of a quiz, correct answers included
type QuizResponse struct {
	models.Quiz
	ClassIDs  []uint `json:"class_ids"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}

type QuizListResponse struct {
	Quizzes []*QuizResponse `json:"quizzes"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ===== STUDENT VIEWS =====

// AvailableQuizResponse is one entry of a student's quiz listing
type AvailableQuizResponse struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	TimeLimit         *int       `json:"time_limit,omitempty"`
	AllowedAttempts   *int       `json:"allowed_attempts,omitempty"`
	PassingScore      *int       `json:"passing_score,omitempty"`
	AvailableFrom     *time.Time `json:"available_from,omitempty"`
	AvailableUntil    *time.Time `json:"available_until,omitempty"`
	TotalPoints       int        `json:"total_points"`
	FullscreenMode    bool       `json:"fullscreen_mode"`
	DisableCopyPaste  bool       `json:"disable_copy_paste"`
	Completed         bool       `json:"completed"`
	AttemptsUsed      int        `json:"attempts_used"`
	AttemptsRemaining *int       `json:"attempts_remaining"`
	CanStart          bool       `json:"can_start"`
	BlockedReason     string     `json:"blocked_reason,omitempty"`
}

// TakeQuizResponse is the student view of one quiz about to be attempted
type TakeQuizResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Description      *string            `json:"description,omitempty"`
	TimeLimit        *int               `json:"time_limit,omitempty"`
	AvailableUntil   *time.Time         `json:"available_until,omitempty"`
	TotalPoints      int                `json:"total_points"`
	FullscreenMode   bool               `json:"fullscreen_mode"`
	DisableCopyPaste bool               `json:"disable_copy_paste"`
	AttemptNumber    int                `json:"attempt_number"`
	StartedAt        time.Time          `json:"started_at"`
	Questions        []TakeQuestionView `json:"questions"`
}

type TakeQuestionView struct {
	ID      uint                `json:"id"`
	Type    models.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Points  int                 `json:"points"`
	Options []OptionView        `json:"options,omitempty"`
}

// OptionView pairs a displayed option with its stored index, which is what
// the student submits
type OptionView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ===== ATTEMPTS =====

type SubmitAttemptRequest struct {
	Answers   assessment.Answers `json:"answers"`
	StartedAt time.Time          `json:"started_at"`
}

// AttemptSummaryResponse is returned by a successful submission
type AttemptSummaryResponse struct {
	AttemptID        uint                      `json:"attempt_id"`
	AttemptNumber    int                       `json:"attempt_number"`
	Score            int                       `json:"score"`
	MaxScore         int                       `json:"max_score"`
	Percentage       float64                   `json:"percentage"`
	Passed           bool                      `json:"passed"`
	IsLate           bool                      `json:"is_late"`
	OverTimeLimit    bool                      `json:"over_time_limit"`
	NeedsReview      bool                      `json:"needs_review"`
	TimeSpentSeconds int                       `json:"time_spent_seconds"`
	CompletedAt      time.Time                 `json:"completed_at"`
	GradedAnswers    []assessment.GradedAnswer `json:"graded_answers,omitempty"`
}

// AttemptResponse is a stored attempt
type AttemptResponse struct {
	ID               uint                      `json:"id"`
	QuizID           uint                      `json:"quiz_id"`
	StudentID        string                    `json:"student_id"`
	AttemptNumber    int                       `json:"attempt_number"`
	Score            int                       `json:"score"`
	MaxScore         int                       `json:"max_score"`
	Percentage       float64                   `json:"percentage"`
	Passed           bool                      `json:"passed"`
	IsLate           bool                      `json:"is_late"`
	OverTimeLimit    bool                      `json:"over_time_limit"`
	NeedsReview      bool                      `json:"needs_review"`
	TimeSpentSeconds int                       `json:"time_spent_seconds"`
	StartedAt        time.Time                 `json:"started_at"`
	CompletedAt      time.Time                 `json:"completed_at"`
	GradedAnswers    []assessment.GradedAnswer `json:"graded_answers,omitempty"`
}

// ===== CLASSES =====

type CreateClassRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	MemberIDs   []string `json:"member_ids" validate:"omitempty,dive,required,max=255"`
}

type ClassMembersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,required,max=255"`
}

type ClassResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	MemberIDs   []string `json:"member_ids"`
}

// ===== EXPORT =====

type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}
