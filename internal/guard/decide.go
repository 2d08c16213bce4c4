package guard

import (
	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/routes"
	"github.com/hongminglow/all-in-dash/internal/session"
)

// Kind is what the guard wants the page tree to do.
type Kind int

const (
	// Loading shows a placeholder; persisted state is not loaded yet.
	Loading Kind = iota
	// Render shows the page at the current path.
	Render
	// Redirect navigates to Decision.Target.
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one guard evaluation.
type Decision struct {
	Kind   Kind
	Target string
}

// State is the input of a guard evaluation.
type State struct {
	Ready         bool
	Authenticated bool
	Role          models.Role
	Path          string
}

// StateOf builds the evaluation input from a session snapshot and the current path.
// Role and identity are only read once the snapshot is ready.
func StateOf(s session.Session, path string) State {
	st := State{Ready: s.Ready, Path: path}
	if s.Ready {
		st.Authenticated = s.Authenticated()
		st.Role = s.Role
	}
	return st
}

// Decide is the guard's state machine. It is pure and total.
func Decide(table routes.Table, st State) Decision {
	if !st.Ready {
		return Decision{Kind: Loading}
	}

	class := table.Classify(st.Path)
	if !st.Authenticated {
		if class.Kind == routes.Public {
			return Decision{Kind: Render}
		}
		return Decision{Kind: Redirect, Target: routes.Login}
	}

	role := st.Role.Normalize()
	switch {
	case class.Kind == routes.Public:
		return Decision{Kind: Redirect, Target: table.OwnerOf(role)}
	case class.Kind == routes.RoleOwned && class.Role != role:
		return Decision{Kind: Redirect, Target: table.OwnerOf(role)}
	}
	return Decision{Kind: Render}
}
