package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	apperrors "github.com/SAP-F-2025/quiz-assessment-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Engine errors, re-exported so handlers only depend on this package
	ErrUnauthorized            = assessment.ErrUnauthorized
	ErrAccessDenied            = assessment.ErrAccessDenied
	ErrQuizNotFound            = assessment.ErrNotFound
	ErrQuizNotAvailable        = assessment.ErrQuizNotAvailable
	ErrQuizNotYetAvailable     = assessment.ErrNotYetAvailable
	ErrQuizExpired             = assessment.ErrExpired
	ErrAttemptLimitExceeded    = assessment.ErrAttemptLimitExceeded
	ErrUnsupportedQuestionType = assessment.ErrUnsupportedQuestionType
	ErrMalformedQuestion       = assessment.ErrMalformedQuestion
	ErrPersistenceConflict     = assessment.ErrPersistenceConflict
	ErrPersistenceFailed       = assessment.ErrPersistenceFailed
	ErrInvalidTransition       = assessment.ErrInvalidTransition
	ErrQuizNotModifiable       = assessment.ErrQuizNotModifiable
	ErrQuizNotDeletable        = assessment.ErrQuizNotDeletable

	ErrQuestionNotFound = errors.New("question not found")
	ErrClassNotFound    = errors.New("class not found")
	ErrMemberNotFound   = errors.New("user is not a member of the class")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrMemberNotFound)
}

// IsUnauthorized checks if error represents a missing or invalid identity
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if the caller is known but may not act on the resource
func IsForbidden(err error) bool {
	var pe *PermissionError
	return errors.Is(err, ErrAccessDenied) || errors.As(err, &pe)
}

// IsUnavailable checks the availability failures of the attempt authorizer
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrQuizNotAvailable) ||
		errors.Is(err, ErrQuizNotYetAvailable) ||
		errors.Is(err, ErrQuizExpired)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a state conflict with the stored quiz
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptLimitExceeded) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrQuizNotModifiable) ||
		errors.Is(err, ErrQuizNotDeletable) ||
		errors.Is(err, ErrPersistenceConflict)
}

// IsRetryable reports whether the caller may retry the same request
func IsRetryable(err error) bool {
	return assessment.IsRetryable(err)
}

// ErrorCode returns the stable machine-readable code for err
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrAccessDenied):
		return "ACCESS_DENIED"
	case errors.Is(err, ErrQuizNotAvailable):
		return "QUIZ_NOT_AVAILABLE"
	case errors.Is(err, ErrQuizNotYetAvailable):
		return "QUIZ_NOT_YET_AVAILABLE"
	case errors.Is(err, ErrQuizExpired):
		return "QUIZ_EXPIRED"
	case errors.Is(err, ErrAttemptLimitExceeded):
		return "ATTEMPT_LIMIT_EXCEEDED"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrQuizNotModifiable):
		return "QUIZ_NOT_MODIFIABLE"
	case errors.Is(err, ErrQuizNotDeletable):
		return "QUIZ_NOT_DELETABLE"
	case errors.Is(err, ErrUnsupportedQuestionType):
		return "UNSUPPORTED_QUESTION_TYPE"
	case errors.Is(err, ErrMalformedQuestion):
		return "MALFORMED_QUESTION"
	case errors.Is(err, ErrPersistenceConflict):
		return "PERSISTENCE_CONFLICT"
	case errors.Is(err, ErrPersistenceFailed):
		return "PERSISTENCE_FAILED"
	case IsNotFound(err):
		return "NOT_FOUND"
	case IsValidation(err):
		return "VALIDATION_ERROR"
	case IsBusinessRule(err):
		return "BUSINESS_RULE_VIOLATION"
	case IsForbidden(err):
		return "PERMISSION_DENIED"
	}
	return "INTERNAL_ERROR"
}
