// Package session holds the authenticated dashboard session.
//
// Store is the only owner of the Session. It starts empty and not ready,
// becomes ready after Hydrate runs once, and afterwards changes only through
// SetSession and Clear. Every change is persisted to the configured slot and
// broadcast to subscribers.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/hongminglow/all-in-dash/internal/auth"
	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/storage"
)

// ErrNotHydrated is returned by mutations attempted before Hydrate.
var ErrNotHydrated = errors.New("session store not hydrated")

// Session is an immutable snapshot of the store.
type Session struct {
	User       *models.User
	Role       models.Role
	Credential string
	Ready      bool
}

// Authenticated reports whether the snapshot carries an identity and a credential.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Credential != ""
}

// Store holds the current Session. It is safe for concurrent use.
type Store struct {
	slot   storage.Slot
	logger *log.Logger
	now    func() time.Time

	hydrateOnce sync.Once

	// writeMu serializes mutations end to end, persistence included, so the
	// slot always ends up holding the last in-memory session.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Session
	subs    map[int]chan struct{}
	nextSub int
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the clock used to discard expired persisted credentials.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty, not-ready store persisting to slot.
func NewStore(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		logger: log.Default(),
		now:    time.Now,
		subs:   make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted session once. The store is ready afterwards
// whatever the outcome: a missing, unreadable or expired record leaves the
// session empty. Later calls are no-ops.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		next := Session{Ready: true}
		rec, err := s.slot.Load(ctx)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			s.logger.Printf("session: hydrate failed, starting signed out: %v", err)
		case rec.User == nil || rec.Credential == "":
			s.logger.Printf("session: ignoring incomplete persisted session")
		case s.credentialExpired(rec.Credential):
			s.logger.Printf("session: persisted credential expired, starting signed out")
			if err := s.slot.Delete(ctx); err != nil {
				s.logger.Printf("session: drop expired session: %v", err)
			}
		default:
			next.User = cloneUser(rec.User)
			next.Role = resolveRole(rec.Role, rec.User)
			next.Credential = rec.Credential
		}
		s.replace(next)
	})
}

func (s *Store) credentialExpired(credential string) bool {
	claims, err := auth.Inspect(credential)
	if err != nil {
		// Opaque credentials carry no expiry we can read.
		return false
	}
	return claims.Expired(s.now())
}

// SetSession replaces the session atomically and persists it. The in-memory
// session is updated even when persisting fails; the error is returned so the
// caller can surface it.
func (s *Store) SetSession(ctx context.Context, user models.User, role models.Role, credential string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return ErrNotHydrated
	}
	u := user
	role = resolveRole(role, &u)
	u.Role = role
	s.replace(Session{User: &u, Role: role, Credential: credential, Ready: true})

	rec := storage.Record{User: cloneUser(&u), Role: role, Credential: credential}
	if err := s.slot.Save(ctx, rec); err != nil {
		s.logger.Printf("session: persist failed: %v", err)
		return err
	}
	return nil
}

// Clear empties the session and removes the persisted copy. Ready stays true.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return ErrNotHydrated
	}
	return s.clearLocked(ctx)
}

// ClearIf clears the session only while credential is still the live one. It
// reports whether it cleared. A stale rejection of an earlier credential must
// not end a session that has since been replaced.
func (s *Store) ClearIf(ctx context.Context, credential string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.Ready() {
		return false, ErrNotHydrated
	}
	if credential == "" || s.CurrentCredential() != credential {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.replace(Session{Ready: true})
	if err := s.slot.Delete(ctx); err != nil {
		s.logger.Printf("session: clear persisted copy failed: %v", err)
		return err
	}
	return nil
}

// CurrentCredential returns the live credential, or "" when signed out.
func (s *Store) CurrentCredential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Credential
}

// Ready reports whether hydration has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Ready
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.current
	out.User = cloneUser(s.current.User)
	return out
}

// Subscribe returns a channel that receives a signal after every change and a
// function that cancels the subscription. Signals coalesce: a slow reader sees
// at least one pending signal, never a backlog, and must re-read Snapshot.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) replace(next Session) {
	s.mu.Lock()
	s.current = next
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
}

func resolveRole(role models.Role, user *models.User) models.Role {
	if role == "" && user != nil {
		role = user.Role
	}
	return models.ParseRole(string(role))
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
