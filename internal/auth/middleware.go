package auth

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Middleware resolves the bearer token and stores the caller in the gin context
func Middleware(resolver *IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Message: "User not authenticated",
				Code:    "UNAUTHORIZED",
			})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserRole, identity.Role)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Message: "User not authenticated",
				Code:    "UNAUTHORIZED",
			})
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, errorBody{
			Message: "Insufficient permissions",
			Code:    "ACCESS_DENIED",
		})
	}
}

// UserIDFrom returns the authenticated user's id
func UserIDFrom(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	return userID, userID != ""
}

// RoleFrom returns the authenticated user's role
func RoleFrom(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
