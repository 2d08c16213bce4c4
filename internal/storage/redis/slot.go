// Package redis provides a Redis-backed session slot.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongminglow/all-in-dash/internal/storage"
	"github.com/redis/go-redis/v9"
)

var _ storage.Slot = (*Slot)(nil)

// Slot stores the encoded record under prefix:key.
type Slot struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
}

// NewSlot wraps an existing client. A zero ttl keeps the record until deleted.
func NewSlot(rdb redis.UniversalClient, prefix, key string, ttl time.Duration) *Slot {
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &Slot{rdb: rdb, key: key, ttl: ttl}
}

// Dial parses a redis:// URL, pings the server and returns a slot owning the client.
func Dial(ctx context.Context, url, key string) (*Slot, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewSlot(rdb, "dash", key, 0), nil
}

// Close releases the underlying client.
func (s *Slot) Close() error {
	return s.rdb.Close()
}

// Load returns the stored record or storage.ErrNotFound.
func (s *Slot) Load(ctx context.Context) (storage.Record, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, fmt.Errorf("load slot %s: %w", s.key, err)
	}
	return storage.Decode(data)
}

// Save replaces the stored record.
func (s *Slot) Save(ctx context.Context, rec storage.Record) error {
	data, err := storage.Encode(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save slot %s: %w", s.key, err)
	}
	return nil
}

// Delete removes the record; a missing key is not an error.
func (s *Slot) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete slot %s: %w", s.key, err)
	}
	return nil
}
