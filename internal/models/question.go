package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	FillInBlank    QuestionType = "fill_in_blank"
	Essay          QuestionType = "essay"
)

// DefaultTrueFalseOptions is used when a true/false question is stored without options.
var DefaultTrueFalseOptions = []string{"True", "False"}

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	QuizID   uint         `json:"quiz_id" gorm:"not null;index"`
	Type     QuestionType `json:"type" gorm:"not null;size:20"`
	Prompt   string       `json:"prompt" gorm:"type:text;not null"`
	Position int          `json:"position" gorm:"not null;default:0"`
	Points   int          `json:"points" gorm:"not null;default:1"`

	// Options holds the ordered choices for multiple choice and true/false questions.
	Options      datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectIndex *int           `json:"correct_index,omitempty"`
	CorrectText  *string        `json:"correct_text,omitempty" gorm:"type:text"`
	Explanation  *string        `json:"explanation,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// OptionList decodes the stored options.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// SetOptions encodes options into the JSON column. A nil slice clears it.
func (q *Question) SetOptions(options []string) error {
	if options == nil {
		q.Options = nil
		return nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(data)
	return nil
}

// HasOptions reports whether the question type is answered by picking an option index.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == TrueFalse
}

// IsTextual reports whether the question type is answered with free text compared against a key.
func (t QuestionType) IsTextual() bool {
	return t == ShortAnswer || t == FillInBlank
}
