package models

import "strings"

// Role is the dashboard a user is allowed to operate.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleMerchant Role = "MERCHANT"
	RoleClient   Role = "CLIENT"
)

// Roles lists every known role in a stable order.
var Roles = []Role{RoleAdmin, RoleMerchant, RoleClient}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleClient:
		return true
	}
	return false
}

// Normalize returns r when known and RoleClient otherwise, so an inconsistent
// value always lands on the least-privileged dashboard.
func (r Role) Normalize() Role {
	if r.Valid() {
		return r
	}
	return RoleClient
}

// ParseRole maps raw input to a Role, case-insensitively. Unknown or empty input
// degrades to RoleClient.
func ParseRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw))).Normalize()
}
