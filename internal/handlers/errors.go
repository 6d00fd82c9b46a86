package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps a service error to its status code and error body
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	status, resp := errorResponse(err)
	h.RespondWithError(c, status, resp, err)
}

func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{
		Code:      services.ErrorCode(err),
		Retryable: services.IsRetryable(err),
	}

	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		resp.Message = "Validation failed"
		resp.Details = validationErrors
		return http.StatusBadRequest, resp
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		resp.Message = businessRuleError.Message
		resp.Details = map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		}
		return http.StatusUnprocessableEntity, resp
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		resp.Message = "Access denied"
		resp.Details = map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		}
		return http.StatusForbidden, resp
	}

	var ruleError *assessment.RuleError
	if errors.As(err, &ruleError) && len(ruleError.Context) > 0 {
		resp.Details = ruleError.Context
	}

	switch {
	case services.IsUnauthorized(err):
		resp.Message = "User not authenticated"
		return http.StatusUnauthorized, resp
	case errors.Is(err, services.ErrAccessDenied):
		resp.Message = "Access denied to quiz"
		return http.StatusForbidden, resp
	case services.IsUnavailable(err):
		resp.Message = err.Error()
		return http.StatusForbidden, resp
	case services.IsNotFound(err):
		resp.Message = err.Error()
		return http.StatusNotFound, resp
	case errors.Is(err, services.ErrPersistenceFailed):
		resp.Message = "Attempt could not be recorded, please retry"
		return http.StatusServiceUnavailable, resp
	case services.IsConflict(err):
		resp.Message = err.Error()
		return http.StatusConflict, resp
	case errors.Is(err, services.ErrUnsupportedQuestionType), errors.Is(err, services.ErrMalformedQuestion):
		resp.Message = "Quiz contains a question that cannot be graded"
		return http.StatusInternalServerError, resp
	}

	resp.Message = "Internal server error"
	resp.Details = nil
	return http.StatusInternalServerError, resp
}
