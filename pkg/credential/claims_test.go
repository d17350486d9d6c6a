package credential

import (
	"encoding/base64"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.com",
		"role":  role,
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	claims, err := Decode(signedToken(t, "admin", exp))
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
	assert.False(t, claims.Expired(time.Now()))
}

func TestDecodeMalformedInputs(t *testing.T) {
	badJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))
	cases := map[string]string{
		"empty":            "",
		"no dots":          "abcdef",
		"two segments":     "aaaa.bbbb",
		"four segments":    "aaaa.bbbb.cccc.dddd",
		"bad base64":       "aaaa.!!!!.cccc",
		"payload not json": "aaaa." + badJSON + ".cccc",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := Decode(token)
			require.ErrorIs(t, err, ErrNoClaims)
			assert.Nil(t, claims)
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, (*Claims)(nil).Expired(now), "nil claims are expired")
	assert.True(t, (&Claims{}).Expired(now), "missing expiry counts as expired")
	assert.True(t, (&Claims{ExpiresAt: now}).Expired(now), "validity is strictly before expiry")
	assert.True(t, (&Claims{ExpiresAt: now.Add(-10 * time.Minute)}).Expired(now))
	assert.False(t, (&Claims{ExpiresAt: now.Add(time.Minute)}).Expired(now))
}

func TestRoleGate(t *testing.T) {
	cases := []struct {
		role       Role
		admin      bool
		superAdmin bool
	}{
		{RoleCustomer, false, false},
		{RoleAdmin, true, false},
		{RoleSubAdmin, true, false},
		{RoleSuperAdmin, true, true},
		{Role("unknown"), false, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			claims := &Claims{Role: tc.role}
			assert.Equal(t, tc.admin, claims.IsAdmin())
			assert.Equal(t, tc.superAdmin, claims.IsSuperAdmin())
		})
	}

	var empty *Claims
	assert.False(t, empty.IsAdmin(), "empty session is never admin")
	assert.False(t, empty.IsSuperAdmin())
}
