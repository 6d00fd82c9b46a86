package assessment

import (
	"fmt"
	"sort"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
)

// QuestionBody is the closed set of question variants. Only the types in this
// file implement it.
type QuestionBody interface {
	Type() models.QuestionType
	isQuestionBody()
}

type MultipleChoiceBody struct {
	Options      []string
	CorrectIndex int
}

type TrueFalseBody struct {
	Options      []string
	CorrectIndex int
}

type ShortAnswerBody struct {
	CorrectAnswer string
}

type FillInBlankBody struct {
	CorrectAnswer string
}

type EssayBody struct{}

func (MultipleChoiceBody) Type() models.QuestionType { return models.MultipleChoice }
func (TrueFalseBody) Type() models.QuestionType      { return models.TrueFalse }
func (ShortAnswerBody) Type() models.QuestionType    { return models.ShortAnswer }
func (FillInBlankBody) Type() models.QuestionType    { return models.FillInBlank }
func (EssayBody) Type() models.QuestionType          { return models.Essay }

func (MultipleChoiceBody) isQuestionBody() {}
func (TrueFalseBody) isQuestionBody()      {}
func (ShortAnswerBody) isQuestionBody()    {}
func (FillInBlankBody) isQuestionBody()    {}
func (EssayBody) isQuestionBody()          {}

// Question is a validated question ready for grading.
type Question struct {
	ID     uint
	Prompt string
	Points int
	Body   QuestionBody
}

// QuestionBank is the ordered question list of one quiz.
type QuestionBank struct {
	questions []Question
}

// NewQuestionBank builds a bank from stored rows, ordered by position then id.
func NewQuestionBank(rows []*models.Question) (*QuestionBank, error) {
	sorted := make([]*models.Question, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].ID < sorted[j].ID
	})

	questions := make([]Question, 0, len(sorted))
	for _, row := range sorted {
		q, err := BuildQuestion(row)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return &QuestionBank{questions: questions}, nil
}

// BuildQuestion converts a stored row into its variant.
func BuildQuestion(row *models.Question) (Question, error) {
	q := Question{ID: row.ID, Prompt: row.Prompt, Points: EffectivePoints(row.Points)}

	switch row.Type {
	case models.MultipleChoice, models.TrueFalse:
		options, err := row.OptionList()
		if err != nil {
			return Question{}, fmt.Errorf("question %d: %w: options are not a string list", row.ID, ErrMalformedQuestion)
		}
		if row.Type == models.TrueFalse && len(options) == 0 {
			options = models.DefaultTrueFalseOptions
		}
		if row.CorrectIndex == nil {
			return Question{}, fmt.Errorf("question %d: %w: missing correct option", row.ID, ErrMalformedQuestion)
		}
		if *row.CorrectIndex < 0 || *row.CorrectIndex >= len(options) {
			return Question{}, fmt.Errorf("question %d: %w: correct option %d out of range", row.ID, ErrMalformedQuestion, *row.CorrectIndex)
		}
		if row.Type == models.MultipleChoice {
			q.Body = MultipleChoiceBody{Options: options, CorrectIndex: *row.CorrectIndex}
		} else {
			q.Body = TrueFalseBody{Options: options, CorrectIndex: *row.CorrectIndex}
		}
	case models.ShortAnswer, models.FillInBlank:
		if row.CorrectText == nil {
			return Question{}, fmt.Errorf("question %d: %w: missing correct answer", row.ID, ErrMalformedQuestion)
		}
		if row.Type == models.ShortAnswer {
			q.Body = ShortAnswerBody{CorrectAnswer: *row.CorrectText}
		} else {
			q.Body = FillInBlankBody{CorrectAnswer: *row.CorrectText}
		}
	case models.Essay:
		q.Body = EssayBody{}
	default:
		return Question{}, fmt.Errorf("question %d: %w: %q", row.ID, ErrUnsupportedQuestionType, row.Type)
	}

	return q, nil
}

// Questions returns the questions in grading order.
func (b *QuestionBank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

func (b *QuestionBank) Len() int {
	return len(b.questions)
}

// TotalPoints is the maximum score obtainable on the bank.
func (b *QuestionBank) TotalPoints() int {
	total := 0
	for _, q := range b.questions {
		total += q.Points
	}
	return total
}

// EffectivePoints applies the default of one point to unset or non-positive values.
func EffectivePoints(points int) int {
	if points < 1 {
		return 1
	}
	return points
}
