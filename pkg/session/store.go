// Package session owns the client-side authentication session: the current
// credential plus its decoded claims, persisted to durable local storage.
// All other components hold read access through the store, never copies.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/pkg/credential"
)

// Authenticator exchanges login credentials for a bearer credential. The HTTP
// client implements this; the indirection keeps the store free of transport
// concerns.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (string, error)
}

// ErrLoginFailed is returned when the backend rejects a login and supplies no
// usable message.
var ErrLoginFailed = errors.New("session: login failed")

// Store holds the process-wide session. Sessions are replaced wholesale on
// login and cleared on logout, expiry or an authentication-failure response;
// individual fields are never patched in place.
type Store struct {
	mu      sync.Mutex
	storage Storage
	auth    Authenticator
	logger  *zap.Logger

	token  string
	claims *credential.Claims
}

// NewStore builds a store over the given storage and authenticator.
func NewStore(storage Storage, auth Authenticator, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, auth: auth, logger: logger}
}

// Initialize loads a previously persisted credential. A credential that no
// longer decodes, or whose claims have expired, is discarded and the session
// starts empty.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.storage.Get(credential.StorageKeyCredential)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	claims, err := credential.Decode(string(raw))
	if err != nil || claims.Expired(time.Now()) {
		s.logger.Debug("discarding stale persisted credential")
		s.clearLocked()
		return nil
	}

	s.token = string(raw)
	s.claims = claims
	return nil
}

// Login authenticates against the backend and replaces the session. On
// failure the backend's message is surfaced when present, with a generic
// fallback; the session and storage are left untouched.
func (s *Store) Login(ctx context.Context, identifier, secret string) error {
	token, err := s.auth.Authenticate(ctx, identifier, secret)
	if err != nil {
		var um interface{ UserMessage() string }
		if errors.As(err, &um) && um.UserMessage() != "" {
			return errors.New(um.UserMessage())
		}
		return ErrLoginFailed
	}

	claims, err := credential.Decode(token)
	if err != nil {
		// A credential the backend issued but we cannot decode leaves the
		// caller unauthenticated rather than half logged in.
		return ErrLoginFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Put(credential.StorageKeyCredential, []byte(token)); err != nil {
		return err
	}
	encoded, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	if err := s.storage.Put(credential.StorageKeyClaims, encoded); err != nil {
		return err
	}

	s.token = token
	s.claims = claims
	return nil
}

// Logout clears the session and its persisted entries. Logging out of an
// empty session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Current returns the decoded claims, or false when no valid session exists.
// An expired credential found during the read triggers an implicit logout.
func (s *Store) Current() (*credential.Claims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claims == nil {
		return nil, false
	}
	if s.claims.Expired(time.Now()) {
		s.clearLocked()
		return nil, false
	}
	return s.claims, true
}

// Token returns the raw credential for request authorization, or the empty
// string when no valid session exists.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claims == nil {
		return ""
	}
	if s.claims.Expired(time.Now()) {
		s.clearLocked()
		return ""
	}
	return s.token
}

// IsAdmin derives the admin capability from the current session. Recomputed
// on every call, never cached.
func (s *Store) IsAdmin() bool {
	claims, ok := s.Current()
	return ok && claims.IsAdmin()
}

// IsSuperAdmin derives the super-admin capability from the current session.
func (s *Store) IsSuperAdmin() bool {
	claims, ok := s.Current()
	return ok && claims.IsSuperAdmin()
}

func (s *Store) clearLocked() {
	if err := s.storage.Delete(credential.StorageKeyCredential); err != nil {
		s.logger.Warn("failed to clear persisted credential", zap.Error(err))
	}
	if err := s.storage.Delete(credential.StorageKeyClaims); err != nil {
		s.logger.Warn("failed to clear persisted claims", zap.Error(err))
	}
	s.token = ""
	s.claims = nil
}
