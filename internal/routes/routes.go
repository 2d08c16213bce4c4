// Package routes classifies dashboard paths and maps roles to their landing pages.
//
// Everything here is pure: no I/O, no shared state. A Table is built once from
// the page tree and then only read.
package routes

import (
	"strings"

	"github.com/hongminglow/all-in-dash/internal/models"
)

const (
	Home     = "/"
	Login    = "/login"
	Register = "/register"

	AdminRoot    = "/admin"
	MerchantRoot = "/merchant"
	ClientRoot   = "/dashboard"
)

// Kind is the classification of a path.
type Kind int

const (
	Unknown Kind = iota
	Public
	RoleOwned
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "public"
	case RoleOwned:
		return "role-owned"
	default:
		return "unknown"
	}
}

// Class is the derived classification of one path. Role is set only for RoleOwned.
type Class struct {
	Kind Kind
	Role models.Role
}

// NavItem is a sidebar link. Roles lists the roles that own the link; when
// empty, ownership is derived from the path prefix.
type NavItem struct {
	Label string
	Path  string
	Roles []models.Role
}

// Table is the static route configuration supplied by the page tree.
type Table struct {
	PublicPaths []string
	Roots       map[models.Role]string
}

// DefaultTable mirrors the dashboard's page tree.
func DefaultTable() Table {
	return Table{
		PublicPaths: []string{Home, Login, Register},
		Roots: map[models.Role]string{
			models.RoleAdmin:    AdminRoot,
			models.RoleMerchant: MerchantRoot,
			models.RoleClient:   ClientRoot,
		},
	}
}

var defaultTable = DefaultTable()

// OwnerOf returns the landing path for role using the default table.
func OwnerOf(role models.Role) string { return defaultTable.OwnerOf(role) }

// Classify classifies path using the default table.
func Classify(path string) Class { return defaultTable.Classify(path) }

// ActiveItem picks the highlighted nav item using the default table.
func ActiveItem(items []NavItem, role models.Role, path string) (NavItem, bool) {
	return defaultTable.ActiveItem(items, role, path)
}

// OwnerOf returns the landing path for role. Unknown or empty roles get the
// client dashboard.
func (t Table) OwnerOf(role models.Role) string {
	return t.root(role.Normalize())
}

func (t Table) root(role models.Role) string {
	if root, ok := t.Roots[role]; ok {
		return root
	}
	return t.Roots[models.RoleClient]
}

// IsPublic reports whether path is one of the public paths. Matching is exact.
func (t Table) IsPublic(path string) bool {
	for _, p := range t.PublicPaths {
		if p == path {
			return true
		}
	}
	return false
}

// Classify returns Public for an exact public path, RoleOwned(R) when path sits
// under R's root segment, and Unknown otherwise.
func (t Table) Classify(path string) Class {
	if t.IsPublic(path) {
		return Class{Kind: Public}
	}
	for _, role := range models.Roles {
		root, ok := t.Roots[role]
		if ok && underRoot(path, root) {
			return Class{Kind: RoleOwned, Role: role}
		}
	}
	return Class{Kind: Unknown}
}

// Items returns the items owned by role, in their original order.
func (t Table) Items(items []NavItem, role models.Role) []NavItem {
	role = role.Normalize()
	var out []NavItem
	for _, item := range items {
		if t.owns(item, role) {
			out = append(out, item)
		}
	}
	return out
}

// ActiveItem picks the item to highlight for path. Only items owned by role
// are candidates. An exact match wins; otherwise the longest item path that is
// a segment prefix of path wins.
func (t Table) ActiveItem(items []NavItem, role models.Role, path string) (NavItem, bool) {
	role = role.Normalize()
	if !underRoot(path, t.root(role)) {
		return NavItem{}, false
	}

	var best NavItem
	found := false
	for _, item := range t.Items(items, role) {
		if item.Path == path {
			return item, true
		}
		if underRoot(path, item.Path) && (!found || len(item.Path) > len(best.Path)) {
			best = item
			found = true
		}
	}
	return best, found
}

// IsActive reports whether item is the one ActiveItem selects.
func (t Table) IsActive(items []NavItem, role models.Role, path string, item NavItem) bool {
	active, ok := t.ActiveItem(items, role, path)
	return ok && active.Path == item.Path && active.Label == item.Label
}

func (t Table) owns(item NavItem, role models.Role) bool {
	if !underRoot(item.Path, t.root(role)) {
		return false
	}
	if len(item.Roles) == 0 {
		return true
	}
	for _, r := range item.Roles {
		if r.Normalize() == role {
			return true
		}
	}
	return false
}

// underRoot reports whether path equals root or continues it with a new
// segment, so "/admin" owns "/admin/users" but not "/administrator".
func underRoot(path, root string) bool {
	if root == "" {
		return false
	}
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		return false
	}
	return path == root || strings.HasPrefix(path, root+"/")
}
