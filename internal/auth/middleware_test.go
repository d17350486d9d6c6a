package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

type stubUsers struct {
	users map[string]*domain.User
}

func (s *stubUsers) Create(_ context.Context, _ *domain.User) error { return nil }
func (s *stubUsers) Update(_ context.Context, _ *domain.User) error { return nil }

func (s *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUsers) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubUsers) List(_ context.Context, _, _ int) ([]domain.User, error) { return nil, nil }

type stubDenylist struct {
	revoked map[string]bool
}

func (d *stubDenylist) Revoke(_ context.Context, jti string, _ time.Time) error {
	d.revoked[jti] = true
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return d.revoked[jti], nil
}

func newProtectedApp(mw *AuthMiddleware, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Message})
		},
	})
	handlers := append([]fiber.Handler{mw.Handle}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"user_id": principal.User.ID})
	})
	app.Get("/protected", handlers...)
	return app
}

func testMiddleware() (*AuthMiddleware, *TokenManager, *stubUsers, *stubDenylist) {
	tokens := NewTokenManager("test-secret", 60)
	users := &stubUsers{users: map[string]*domain.User{}}
	denylist := &stubDenylist{revoked: map[string]bool{}}
	return NewAuthMiddleware(tokens, users, denylist), tokens, users, denylist
}

func issueFor(t *testing.T, tokens *TokenManager, users *stubUsers, role domain.Role) (string, *Claims) {
	t.Helper()
	user := &domain.User{ID: "user-1", Email: "a@b.com", Role: role, Status: domain.UserStatusActive}
	users.users[user.ID] = user
	tokenStr, _, err := tokens.GenerateToken(user)
	require.NoError(t, err)
	claims, err := tokens.ParseToken(tokenStr)
	require.NoError(t, err)
	return tokenStr, claims
}

func doRequest(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	mw, _, _, _ := testMiddleware()
	resp := doRequest(t, newProtectedApp(mw), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	mw, _, _, _ := testMiddleware()
	app := newProtectedApp(mw)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	mw, _, _, _ := testMiddleware()
	resp := doRequest(t, newProtectedApp(mw), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareAdmitsValidToken(t *testing.T) {
	mw, tokens, users, _ := testMiddleware()
	token, _ := issueFor(t, tokens, users, domain.RoleCustomer)

	resp := doRequest(t, newProtectedApp(mw), token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejectsRevokedToken(t *testing.T) {
	mw, tokens, users, denylist := testMiddleware()
	token, claims := issueFor(t, tokens, users, domain.RoleCustomer)

	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	resp := doRequest(t, newProtectedApp(mw), token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsSuspendedAccount(t *testing.T) {
	mw, tokens, users, _ := testMiddleware()
	token, _ := issueFor(t, tokens, users, domain.RoleCustomer)
	users.users["user-1"].Status = domain.UserStatusSuspended

	resp := doRequest(t, newProtectedApp(mw), token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsDeletedAccount(t *testing.T) {
	mw, tokens, users, _ := testMiddleware()
	token, _ := issueFor(t, tokens, users, domain.RoleCustomer)
	delete(users.users, "user-1")

	resp := doRequest(t, newProtectedApp(mw), token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminGate(t *testing.T) {
	cases := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleCustomer, http.StatusForbidden},
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleSubAdmin, http.StatusOK},
		{domain.RoleSuperAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			mw, tokens, users, _ := testMiddleware()
			token, _ := issueFor(t, tokens, users, tc.role)

			resp := doRequest(t, newProtectedApp(mw, RequireAdmin()), token)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireSuperAdminGate(t *testing.T) {
	mw, tokens, users, _ := testMiddleware()
	token, _ := issueFor(t, tokens, users, domain.RoleAdmin)
	resp := doRequest(t, newProtectedApp(mw, RequireSuperAdmin()), token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	mw, tokens, users, _ = testMiddleware()
	token, _ = issueFor(t, tokens, users, domain.RoleSuperAdmin)
	resp = doRequest(t, newProtectedApp(mw, RequireSuperAdmin()), token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
