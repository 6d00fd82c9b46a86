package auth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/assessment"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/config"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/models"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// TokenParser verifies a bearer token and returns its claims. *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// Identity is the caller resolved from a credential
type Identity struct {
	UserID string
	Name   string
	Role   models.UserRole
}

// IdentityResolver maps Casdoor tokens to identities
type IdentityResolver struct {
	parser TokenParser
	logger *slog.Logger
}

// NewCasdoorResolver builds a resolver backed by a Casdoor client
func NewCasdoorResolver(cfg config.CasdoorConfig, logger *slog.Logger) *IdentityResolver {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return NewIdentityResolver(client, logger)
}

func NewIdentityResolver(parser TokenParser, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{parser: parser, logger: logger}
}

// Resolve verifies token and extracts the user id and role. Every failure is
// reported as assessment.ErrUnauthorized.
func (r *IdentityResolver) Resolve(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing credential", assessment.ErrUnauthorized)
	}

	claims, err := r.parser.ParseJwtToken(token)
	if err != nil {
		r.logger.Debug("Rejected bearer token", "error", err)
		return nil, fmt.Errorf("%w: invalid credential", assessment.ErrUnauthorized)
	}

	userID := claims.User.Id
	if userID == "" {
		userID = claims.User.Name
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: credential has no subject", assessment.ErrUnauthorized)
	}

	role, ok := roleFromUser(claims.User)
	if !ok {
		r.logger.Warn("Rejected token with unknown role", "user_id", userID, "tag", claims.User.Tag)
		return nil, fmt.Errorf("%w: unknown role %q", assessment.ErrUnauthorized, claims.User.Tag)
	}

	return &Identity{UserID: userID, Name: claims.User.Name, Role: role}, nil
}

// roleFromUser reads the role from the Casdoor user tag. Admin flags win and
// an empty tag means student.
func roleFromUser(user casdoorsdk.User) (models.UserRole, bool) {
	if user.IsAdmin {
		return models.RoleAdmin, true
	}
	switch models.UserRole(strings.ToLower(strings.TrimSpace(user.Tag))) {
	case models.RoleAdmin:
		return models.RoleAdmin, true
	case models.RoleInstructor, "teacher":
		return models.RoleInstructor, true
	case models.RoleStudent, "":
		return models.RoleStudent, true
	}
	return "", false
}
