package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User   *domain.User
	Claims *Claims
}

// Denylist checks whether a token has been revoked by logout.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	denylist Denylist
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, denylist Denylist) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, denylist: denylist}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.denylist != nil && claims.ID != "" {
		revoked, err := m.denylist.IsRevoked(c.UserContext(), claims.ID)
		if err == nil && revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	user, err := m.users.GetByID(c.UserContext(), claims.Subject)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return apperrors.NewUnauthorized("account suspended")
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
