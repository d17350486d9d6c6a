// Package credential decodes backend-issued bearer credentials for display
// and role derivation. Decoding never verifies the signature; clients trust
// the backend to verify on every request, so decoded claims are a UI hint,
// not a security boundary.
package credential

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Storage keys shared by the session store and the HTTP client wrapper.
const (
	StorageKeyCredential = "credential"
	StorageKeyClaims     = "claims"
)

// Role mirrors the backend's account privilege levels.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSubAdmin   Role = "sub-admin"
	RoleSuperAdmin Role = "super-admin"
)

// IsAdmin reports whether the role grants admin-dashboard access.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsSuperAdmin reports whether the role is exactly super-admin.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// ErrNoClaims reports that a credential could not be decoded. Malformed
// credentials are expected under corruption and must degrade to
// "unauthenticated", never crash the caller.
var ErrNoClaims = errors.New("credential: no claims")

// Claims is the identity decoded from a credential's payload segment.
type Claims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the claims grant admin-dashboard access.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role.IsAdmin()
}

// IsSuperAdmin reports whether the claims carry the super-admin role.
func (c *Claims) IsSuperAdmin() bool {
	return c != nil && c.Role.IsSuperAdmin()
}

// Expired reports whether the claims are no longer valid at the given time.
// Claims are valid only while now is strictly before the expiry; a missing
// expiry counts as expired.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt)
}

type wireClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Decode parses the payload segment of a dot-separated credential without
// signature verification. Wrong segment count, an invalid base64url alphabet
// or invalid JSON all return ErrNoClaims.
func Decode(token string) (*Claims, error) {
	var wc wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &wc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoClaims, err)
	}

	claims := &Claims{
		Subject: wc.Subject,
		Email:   wc.Email,
		Role:    Role(wc.Role),
	}
	if wc.ExpiresAt != nil {
		claims.ExpiresAt = wc.ExpiresAt.Time
	}
	return claims, nil
}
