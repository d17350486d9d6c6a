package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// AuthService coordinates registration, login and credential lifecycle flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	denylist   auth.Denylist
	dispatcher events.Dispatcher
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Denylist          auth.Denylist
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		denylist:   deps.Denylist,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// Register creates a new customer account. Accounts always start with the
// customer role; admin roles are only assigned through the super-admin flow.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, errors.New("email already registered")
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{Email: user.Email})

	token, meta, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, meta.ExpiresAt, nil
}

// Login authenticates an account and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, errors.New("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, errors.New("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errors.New("invalid credentials")
	}
	token, meta, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, meta.ExpiresAt, nil
}

// Logout revokes the presented token until its natural expiry. Revoking an
// already expired or already revoked token is a no-op.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, claims.ID, until)
}

// RequestPasswordReset persists a reset token for the account email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return errors.New("token expired or used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	return s.resets.MarkUsed(ctx, token.ID)
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return errors.New("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// GetProfile returns the account for the given id.
func (s *AuthService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns a page of accounts for admin user management.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, limit, offset)
}

// SetRole updates an account's role. Reserved for super-admin callers.
func (s *AuthService) SetRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	switch role {
	case domain.RoleCustomer, domain.RoleAdmin, domain.RoleSubAdmin, domain.RoleSuperAdmin:
	default:
		return nil, errors.New("unknown role")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
