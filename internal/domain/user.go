package domain

import "time"

// Role enumerates the three caller roles.
type Role string

const (
	RoleUser       Role = "USER"
	RoleTechnician Role = "TECHNICIAN"
	RoleAdmin      Role = "ADMIN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may see internal notes and other users' tickets.
func (r Role) IsStaff() bool {
	return r == RoleTechnician || r == RoleAdmin
}

// User is the domain model for anyone who files or works tickets.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Department   *string
	Location     *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
