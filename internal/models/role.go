// Package models contains the domain structures shared between the
// business-logic layer and the storage layer: users, schools, plans,
// subscription records and the school-scoped entities (students, classes,
// invoices, payments, academic terms).
package models

import "fmt"

// Role is the enumerated account role. It is the single place role strings
// are defined; guards compare against these constants and nothing else.
type Role string

const (
	// RoleSchoolOwner is the default role assigned at school registration.
	RoleSchoolOwner Role = "school_owner"
	// RoleSuperAdmin bypasses subscription checks and owns the admin area.
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole maps a stored role string onto a Role constant.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSchoolOwner, RoleSuperAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsSuperAdmin reports whether the role grants the unconditional
// subscription bypass and admin-area access.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}
