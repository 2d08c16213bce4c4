package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/storage"
)

var _ storage.UserStore = (*Users)(nil)

// Users is an in-memory user directory keyed by ID.
type Users struct {
	mu    sync.RWMutex
	byID  map[string]models.User
	order []string
}

// NewUsers seeds a directory with users. Later duplicates of an ID win.
func NewUsers(seed ...models.User) *Users {
	u := &Users{byID: make(map[string]models.User, len(seed))}
	for _, user := range seed {
		if _, ok := u.byID[user.ID]; !ok {
			u.order = append(u.order, user.ID)
		}
		u.byID[user.ID] = user
	}
	return u
}

// FindByUsernameOrEmail matches the username case-sensitively and the email case-insensitively.
func (u *Users) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, id := range u.order {
		user, ok := u.byID[id]
		if !ok {
			continue
		}
		if user.Username == identifier || strings.EqualFold(user.Email, identifier) {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindByID returns the user with id.
func (u *Users) FindByID(_ context.Context, id string) (models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.byID[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// DeleteUser removes the user with id.
func (u *Users) DeleteUser(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byID[id]; !ok {
		return storage.ErrNotFound
	}
	delete(u.byID, id)
	return nil
}
