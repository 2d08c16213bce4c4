package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hongminglow/all-in-dash/internal/models"
)

// ErrNotFound indicates the slot holds no persisted session, or the user
// directory has no matching user.
var ErrNotFound = errors.New("record not found")

// Record is the persisted shape of a session.
type Record struct {
	User       *models.User `json:"user"`
	Role       models.Role  `json:"role"`
	Credential string       `json:"credential"`
}

// Slot is a single opaque key-value slot holding at most one Record.
type Slot interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context) error
}

// Encode serializes a record for backends that store raw bytes.
func Encode(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session record: %w", err)
	}
	return data, nil
}

// Decode parses bytes produced by Encode.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session record: %w", err)
	}
	return rec, nil
}

// UserStore is the user directory behind the development API.
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}
