package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "admin@example.com",
		Role:  domain.RoleAdmin,
	}
}

func TestGenerateAndParseRoundtrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	tokenStr, meta, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	require.NotNil(t, meta)
	assert.Equal(t, "user-1", meta.UserID)
	assert.Equal(t, domain.RoleAdmin, meta.Role)
	assert.NotEmpty(t, meta.ID)

	claims, err := tm.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, meta.ID, claims.ID, "jti must match the issued metadata")
	assert.WithinDuration(t, meta.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	tokenStr, _, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = tm.ParseToken(tampered)
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("issuer-secret", 60)
	verifier := NewTokenManager("other-secret", 60)

	tokenStr, _, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = verifier.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}

	tokenStr, _, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = tm.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestGenerateUsesFreshTokenID(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	_, first, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	_, second, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestDefaultTTLApplied(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	assert.Equal(t, time.Hour, tm.ttl)
}
