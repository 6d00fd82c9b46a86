package handlers

import (
	"github.com/SAP-F-2025/quiz-assessment-service/internal/auth"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message   string      `json:"message"`
	Code      string      `json:"code,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.DebugContext(c.Request.Context(), message, h.requestFields(c, additionalFields)...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields)...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.WarnContext(c.Request.Context(), message, h.requestFields(c, additionalFields)...)
}

func (h *BaseHandler) requestFields(c *gin.Context, additionalFields []interface{}) []interface{} {
	userID, _ := auth.UserIDFrom(c)
	fields := []interface{}{
		"request_id", utils.GetRequestID(c),
		"user_id", userID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, resp ErrorResponse, err error) {
	if err != nil && statusCode >= 500 {
		h.LogError(c, err, resp.Message, "status_code", statusCode, "code", resp.Code)
	} else {
		h.LogWarn(c, resp.Message, "status_code", statusCode, "code", resp.Code, "error", err)
	}
	c.AbortWithStatusJSON(statusCode, resp)
}
