// Package memory provides a process-local session slot.
package memory

import (
	"context"
	"sync"

	"github.com/hongminglow/all-in-dash/internal/storage"
)

var _ storage.Slot = (*Slot)(nil)

// Slot keeps the encoded record in memory. The zero value is empty and ready to use.
type Slot struct {
	mu   sync.Mutex
	data []byte
	// LoadErr, when set, is returned by Load instead of the stored record.
	LoadErr error
}

// Load returns the stored record or storage.ErrNotFound.
func (s *Slot) Load(ctx context.Context) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return storage.Record{}, s.LoadErr
	}
	if s.data == nil {
		return storage.Record{}, storage.ErrNotFound
	}
	return storage.Decode(s.data)
}

// Save replaces the stored record.
func (s *Slot) Save(ctx context.Context, rec storage.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := storage.Encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Delete empties the slot.
func (s *Slot) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}
