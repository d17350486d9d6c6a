package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return fiber.NewError(http.StatusForbidden, "authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin admits admin, sub-admin and super-admin principals.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleSubAdmin, domain.RoleSuperAdmin)
}

// RequireSuperAdmin admits only super-admin principals.
func RequireSuperAdmin() fiber.Handler {
	return RequireRole(domain.RoleSuperAdmin)
}
