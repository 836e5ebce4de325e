package domain

import (
	"fmt"
	"strings"

	"shipment-console/internal/apperr"
)

// Role is the role of an authenticated viewer.
type Role string

// List of roles
const (
	RoleSeller     Role = "seller"
	RoleAgent      Role = "agent"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var allowedRoles = [...]Role{RoleSeller, RoleAgent, RoleAdmin, RoleSuperAdmin}

// Valid checks if the Role is known
func (r Role) Valid() bool {
	for _, v := range allowedRoles {
		if r == v {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role has administrative rights (admin or super admin).
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole rejects unknown roles with a permission error.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", apperr.Permission(fmt.Sprintf("unknown role %q", raw))
	}
	return r, nil
}

// Viewer is the authenticated caller a session belongs to.
type Viewer struct {
	ID   string
	Role Role
}

// Key identifies the viewer's session.
func (v Viewer) Key() string {
	return string(v.Role) + ":" + v.ID
}

// EntityKind returns the deactivatable kind for the viewer's role, if any.
func (v Viewer) EntityKind() (EntityKind, bool) {
	switch v.Role {
	case RoleAgent:
		return EntityAgent, true
	case RoleSeller:
		return EntitySeller, true
	case RoleAdmin:
		return EntityAdmin, true
	default:
		return "", false
	}
}
