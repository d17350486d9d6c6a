package domain

import "time"

// Role enumerates account privilege levels. Values are lowercase because they
// travel inside token payloads consumed by the storefront and admin clients.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSubAdmin   Role = "sub-admin"
	RoleSuperAdmin Role = "super-admin"
)

// IsAdmin reports whether the role carries admin-dashboard access.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsSuperAdmin reports whether the role is exactly super-admin.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for storefront customers and dashboard operators.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
