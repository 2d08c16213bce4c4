// Package guard decides, on every navigation, whether the visitor may see the
// current page or must be sent elsewhere.
package guard

import (
	"context"
	"log"
	"sync"

	"github.com/hongminglow/all-in-dash/internal/routes"
	"github.com/hongminglow/all-in-dash/internal/session"
)

// Navigator performs a client-side navigation. The resulting path change is
// reported later through the PathSource, not synchronously.
type Navigator interface {
	Push(path string)
}

// SessionSource is the read side of the credential store.
type SessionSource interface {
	Snapshot() session.Session
	Subscribe() (<-chan struct{}, func())
}

// PathSource reports the router's committed path.
type PathSource interface {
	Path() string
	PathChanges() <-chan struct{}
}

// Observer is told about every evaluation.
type Observer func(State, Decision)

type redirect struct {
	from string
	to   string
}

// Guard issues at most one redirect per settled (session, path) pair.
type Guard struct {
	table    routes.Table
	nav      Navigator
	logger   *log.Logger
	observer Observer

	mu       sync.Mutex
	inflight *redirect
}

// Option customizes a Guard.
type Option func(*Guard)

// WithLogger routes redirect diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// WithObserver registers fn to be called after each evaluation.
func WithObserver(fn Observer) Option {
	return func(g *Guard) { g.observer = fn }
}

// New returns a guard over table that navigates through nav.
func New(table routes.Table, nav Navigator, opts ...Option) *Guard {
	g := &Guard{table: table, nav: nav, logger: log.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate runs the full decision for st and pushes a redirect when one is
// needed and not already in flight. A redirect stays in flight until a path
// other than the one it was issued from is evaluated.
func (g *Guard) Evaluate(st State) Decision {
	d := Decide(g.table, st)

	g.mu.Lock()
	if g.inflight != nil && g.inflight.from != st.Path {
		g.inflight = nil
	}
	push := false
	switch {
	case d.Kind != Redirect:
		if st.Ready {
			g.inflight = nil
		}
	case g.inflight != nil && g.inflight.to == d.Target:
		// already in flight
	default:
		g.inflight = &redirect{from: st.Path, to: d.Target}
		push = true
	}
	g.mu.Unlock()

	if push {
		g.logger.Printf("guard: redirect %s -> %s", st.Path, d.Target)
		g.nav.Push(d.Target)
	}
	if g.observer != nil {
		g.observer(st, d)
	}
	return d
}

// Pending returns the target of the in-flight redirect, if any.
func (g *Guard) Pending() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight == nil {
		return "", false
	}
	return g.inflight.to, true
}

// Run evaluates the guard on start and then after every session change and
// every path change until ctx is done. All evaluations happen on the calling
// goroutine. The path is refreshed only when the path source signals, so a
// pushed redirect is not visible until the router commits it.
func (g *Guard) Run(ctx context.Context, sessions SessionSource, paths PathSource) error {
	changes, cancel := sessions.Subscribe()
	defer cancel()

	path := paths.Path()
	g.Evaluate(StateOf(sessions.Snapshot(), path))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
		case <-paths.PathChanges():
			path = paths.Path()
		}
		g.Evaluate(StateOf(sessions.Snapshot(), path))
	}
}
