package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/auth"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/gin-gonic/gin"
)

// parseIDParam returns 0 after writing a 400 when the param is not a positive integer
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(param)), 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Code:    "VALIDATION_ERROR",
			Details: "must be a positive integer",
		}, err)
		return 0
	}
	return uint(id)
}

// parseStringParam returns "" after writing a 400 when the param is blank
func (h *BaseHandler) parseStringParam(c *gin.Context, param string) string {
	value := strings.TrimSpace(c.Param(param))
	if value == "" {
		h.RespondWithError(c, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Code:    "VALIDATION_ERROR",
			Details: "ID cannot be empty",
		}, nil)
	}
	return value
}

// bindJSON returns false after writing a 400 when the body does not decode
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Code:    "VALIDATION_ERROR",
			Details: err.Error(),
		}, err)
		return false
	}
	return true
}

// caller returns false after writing a 401 when the identity middleware did not run
func (h *BaseHandler) caller(c *gin.Context) (services.Caller, bool) {
	userID, ok := auth.UserIDFrom(c)
	role, hasRole := auth.RoleFrom(c)
	if !ok || !hasRole {
		h.RespondWithError(c, http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Code:    "UNAUTHORIZED",
		}, nil)
		return services.Caller{}, false
	}
	return services.Caller{UserID: userID, Role: role}, true
}
