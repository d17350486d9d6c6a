package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordResetRequest asks for a reset token by email.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest redeems a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest rotates the caller's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SetRoleRequest updates an account's role (super-admin only).
type SetRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
