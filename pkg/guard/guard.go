// Package guard decides whether a protected admin view may render. Rather
// than trusting locally decoded claims, the guard re-verifies the role with a
// backend profile lookup; the local session only short-circuits the obvious
// unauthenticated case.
package guard

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/pkg/client"
	"github.com/spec-kit/commerce-service/pkg/session"
)

// Decision is the tri-state outcome of a guard check. The zero value is
// Unknown so a pending asynchronous check naturally reads as "still waiting";
// callers must render a neutral indicator for Unknown and never treat it as
// Allowed.
type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionDenied
	DecisionAllowed
)

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	switch d {
	case DecisionDenied:
		return "denied"
	case DecisionAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// ProfileAPI fetches an account's authoritative record.
type ProfileAPI interface {
	Profile(ctx context.Context, id string) (*client.User, error)
}

// Guard gates protected admin views.
type Guard struct {
	sessions *session.Store
	api      ProfileAPI
	logger   *zap.Logger
}

// New builds a guard over the session store and profile endpoint.
func New(sessions *session.Store, api ProfileAPI, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{sessions: sessions, api: api, logger: logger}
}

// CheckAdmin resolves whether the current session may access admin views.
// Absence of a session denies immediately without a round trip; otherwise
// the backend's role record decides. A lookup error, missing record or
// non-admin role all deny — access is allowed only on an explicit match.
func (g *Guard) CheckAdmin(ctx context.Context) Decision {
	claims, ok := g.sessions.Current()
	if !ok {
		return DecisionDenied
	}

	profile, err := g.api.Profile(ctx, claims.Subject)
	if err != nil {
		g.logger.Warn("admin check lookup failed", zap.Error(err))
		return DecisionDenied
	}
	if profile == nil || !profile.Role.IsAdmin() {
		return DecisionDenied
	}
	return DecisionAllowed
}

// CheckAdminAsync runs CheckAdmin off the calling flow. The channel receives
// exactly one Decision; until it does, the caller is in the Unknown state and
// must show a waiting indicator.
func (g *Guard) CheckAdminAsync(ctx context.Context) <-chan Decision {
	result := make(chan Decision, 1)
	go func() {
		result <- g.CheckAdmin(ctx)
	}()
	return result
}
