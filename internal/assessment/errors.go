package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAccessDenied         = errors.New("access denied to quiz")
	ErrNotFound             = errors.New("quiz not found")
	ErrQuizNotAvailable     = errors.New("quiz is not available")
	ErrNotYetAvailable      = errors.New("quiz is not yet available")
	ErrExpired              = errors.New("quiz availability window has closed")
	ErrAttemptLimitExceeded = errors.New("maximum attempts exceeded")

	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	ErrMalformedQuestion       = errors.New("malformed question")

	// Persistence failures are retryable by the caller.
	ErrPersistenceConflict = errors.New("attempt could not be recorded due to a concurrent submission")
	ErrPersistenceFailed   = errors.New("attempt could not be recorded")

	ErrInvalidTransition = errors.New("invalid quiz status transition")
	ErrQuizNotModifiable = errors.New("quiz cannot be modified once attempts exist")
	ErrQuizNotDeletable  = errors.New("quiz can only be deleted while in draft with no attempts")
)

// RuleError attaches context to one of the sentinel errors above while still
// matching it through errors.Is.
type RuleError struct {
	Kind    error
	Message string
	Context map[string]interface{}
}

func (e *RuleError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *RuleError) Unwrap() error {
	return e.Kind
}

func newRuleError(kind error, message string, context map[string]interface{}) *RuleError {
	return &RuleError{Kind: kind, Message: message, Context: context}
}

// IsRetryable reports whether err is a persistence failure the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistenceConflict) || errors.Is(err, ErrPersistenceFailed)
}
