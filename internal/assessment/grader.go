package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// GradedAnswer is one entry of a graded breakdown, in question bank order.
type GradedAnswer struct {
	QuestionID     uint        `json:"question_id"`
	Type           string      `json:"type"`
	SubmittedValue interface{} `json:"submitted_value"`
	CorrectAnswer  interface{} `json:"correct_answer,omitempty"`
	IsCorrect      bool        `json:"is_correct"`
	Points         int         `json:"points"`
	EarnedPoints   int         `json:"earned_points"`
	NeedsReview    bool        `json:"needs_review,omitempty"`
}

// Answers maps question id to the raw submitted JSON value.
type Answers map[uint]json.RawMessage

// Grade applies each question's rule to the submitted answers. Answers for
// questions not in the bank are ignored.
func Grade(bank *QuestionBank, answers Answers) ([]GradedAnswer, error) {
	graded := make([]GradedAnswer, 0, bank.Len())

	for _, q := range bank.Questions() {
		raw := answers[q.ID]
		entry := GradedAnswer{
			QuestionID:     q.ID,
			Type:           string(q.Body.Type()),
			SubmittedValue: decodeValue(raw),
			Points:         q.Points,
		}

		switch body := q.Body.(type) {
		case MultipleChoiceBody:
			entry.CorrectAnswer = body.CorrectIndex
			entry.IsCorrect = matchesIndex(entry.SubmittedValue, body.CorrectIndex)
		case TrueFalseBody:
			entry.CorrectAnswer = body.CorrectIndex
			entry.IsCorrect = matchesIndex(entry.SubmittedValue, body.CorrectIndex)
		case ShortAnswerBody:
			entry.CorrectAnswer = body.CorrectAnswer
			entry.IsCorrect = matchesText(raw, body.CorrectAnswer)
		case FillInBlankBody:
			entry.CorrectAnswer = body.CorrectAnswer
			entry.IsCorrect = matchesText(raw, body.CorrectAnswer)
		case EssayBody:
			entry.NeedsReview = true
		default:
			return nil, fmt.Errorf("question %d: %w", q.ID, ErrUnsupportedQuestionType)
		}

		if entry.IsCorrect {
			entry.EarnedPoints = q.Points
		}
		graded = append(graded, entry)
	}

	return graded, nil
}

// NeedsReview reports whether any answer in the breakdown awaits manual grading.
func NeedsReview(graded []GradedAnswer) bool {
	for _, g := range graded {
		if g.NeedsReview {
			return true
		}
	}
	return false
}

func decodeValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// matchesIndex only accepts a JSON number equal to the index. "1" does not match 1.
func matchesIndex(submitted interface{}, correct int) bool {
	n, ok := submitted.(float64)
	return ok && n == float64(correct)
}

func matchesText(raw json.RawMessage, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(textValue(raw)), strings.TrimSpace(correct))
}

// textValue renders a raw answer as text. Strings are used as-is, numbers and
// booleans keep their literal form, and anything else counts as empty.
func textValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return ""
		}
		return string(trimmed)
	case 'n', '[', '{':
		return ""
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return ""
		}
		return n.String()
	}
}
