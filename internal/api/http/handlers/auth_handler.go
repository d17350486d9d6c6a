package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

// AuthHandler exposes account and credential endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	user, token, exp, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return apperrors.NewUnauthorized(err.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout. The presented token is denylisted until
// its natural expiry.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.Claims); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Profile handles GET /users/:id. Consulted by admin clients to re-verify a
// role server-side instead of trusting locally decoded claims.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id := c.Params("id")
	if !principal.User.Role.IsAdmin() && principal.User.ID != id {
		return apperrors.NewForbidden("cannot read other profiles")
	}

	user, err := h.auth.GetProfile(c.UserContext(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ListUsers handles GET /admin/users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	page, perPage := pagination(c)
	users, err := h.auth.ListUsers(c.UserContext(), perPage, (page-1)*perPage)
	if err != nil {
		return apperrors.MapError(err)
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// SetRole handles PUT /admin/users/:id/role. Super-admin only.
func (h *AuthHandler) SetRole(c *fiber.Ctx) error {
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.auth.SetRole(c.UserContext(), c.Params("id"), req.Role)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// RequestPasswordReset handles POST /auth/password/reset/request. The
// response is identical whether or not the email maps to an account, so the
// endpoint cannot be used to enumerate registered addresses.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if _, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"status": "reset_requested"},
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token and new password required", nil)
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_reset"}})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	if err := h.auth.ChangePassword(c.UserContext(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}
