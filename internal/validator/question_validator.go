package validator

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-assessment-service/internal/errors"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
)

const (
	minChoiceOptions = 2
	maxChoiceOptions = 10
	maxQuestionPoint = 100
)

// QuestionValidator checks that a question carries exactly the fields its type needs
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates one question, prefixing field names with prefix.
func (v *QuestionValidator) ValidateQuestion(prefix string, q *models.Question) ValidationErrors {
	var errs ValidationErrors
	add := func(field, message string, value interface{}) {
		errs = append(errs, *apperrors.NewValidationError(prefix+field, message, value))
	}

	if strings.TrimSpace(q.Prompt) == "" {
		add("prompt", "is required", q.Prompt)
	}
	if q.Points < 1 || q.Points > maxQuestionPoint {
		add("points", fmt.Sprintf("must be between 1 and %d", maxQuestionPoint), q.Points)
	}

	options, err := q.OptionList()
	if err != nil {
		add("options", "must be a list of strings", nil)
		return errs
	}

	switch q.Type {
	case models.MultipleChoice:
		if len(options) < minChoiceOptions || len(options) > maxChoiceOptions {
			add("options", fmt.Sprintf("must have between %d and %d options", minChoiceOptions, maxChoiceOptions), len(options))
		}
		for i, option := range options {
			if strings.TrimSpace(option) == "" {
				add(fmt.Sprintf("options[%d]", i), "must not be empty", option)
			}
		}
		v.validateCorrectIndex(q, len(options), add)
		if q.CorrectText != nil {
			add("correct_text", "is not allowed for this question type", *q.CorrectText)
		}
	case models.TrueFalse:
		if len(options) == 0 {
			options = models.DefaultTrueFalseOptions
		}
		if len(options) != 2 {
			add("options", "must have exactly 2 options", len(options))
		}
		v.validateCorrectIndex(q, len(options), add)
		if q.CorrectText != nil {
			add("correct_text", "is not allowed for this question type", *q.CorrectText)
		}
	case models.ShortAnswer, models.FillInBlank:
		if q.CorrectText == nil || strings.TrimSpace(*q.CorrectText) == "" {
			add("correct_text", "is required", nil)
		}
		v.rejectChoiceFields(q, options, add)
	case models.Essay:
		if q.CorrectText != nil {
			add("correct_text", "is not allowed for this question type", *q.CorrectText)
		}
		v.rejectChoiceFields(q, options, add)
	default:
		add("type", "must be a valid question type (multiple_choice, true_false, short_answer, fill_in_blank, essay)", q.Type)
	}

	return errs
}

// ValidateQuestions validates a full question list.
func (v *QuestionValidator) ValidateQuestions(questions []*models.Question) ValidationErrors {
	var errs ValidationErrors
	for i, q := range questions {
		errs = append(errs, v.ValidateQuestion(fmt.Sprintf("questions[%d].", i), q)...)
	}
	return errs
}

func (v *QuestionValidator) validateCorrectIndex(q *models.Question, optionCount int, add func(string, string, interface{})) {
	if q.CorrectIndex == nil {
		add("correct_index", "is required", nil)
		return
	}
	if *q.CorrectIndex < 0 || *q.CorrectIndex >= optionCount {
		add("correct_index", fmt.Sprintf("must reference one of the %d options", optionCount), *q.CorrectIndex)
	}
}

func (v *QuestionValidator) rejectChoiceFields(q *models.Question, options []string, add func(string, string, interface{})) {
	if len(options) > 0 {
		add("options", "is not allowed for this question type", len(options))
	}
	if q.CorrectIndex != nil {
		add("correct_index", "is not allowed for this question type", *q.CorrectIndex)
	}
}
