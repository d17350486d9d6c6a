package domain

import "time"

// Token represents issued authentication token metadata. The ID doubles as the
// JWT jti and is the key used to denylist tokens on logout.
type Token struct {
	ID        string
	UserID    string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
