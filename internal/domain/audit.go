package domain

import "time"

// AuditEntry records an admin action for the dashboard log viewer.
type AuditEntry struct {
	ID        string
	ActorID   string
	Action    string
	Entity    string
	EntityID  string
	Detail    string
	CreatedAt time.Time
}
