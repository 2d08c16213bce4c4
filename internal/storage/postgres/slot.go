package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/all-in-dash/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Slot satisfies the storage.Slot interface at compile time.
var _ storage.Slot = (*Slot)(nil)

// Slot provides Postgres-backed persistence for one session record.
type Slot struct {
	pool *pgxpool.Pool
	key  string
}

// NewSlot connects to databaseURL, runs migrations and returns a slot bound to key.
func NewSlot(ctx context.Context, databaseURL, key string) (*Slot, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Slot{pool: pool, key: key}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Slot) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Slot) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_slots (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`ALTER TABLE session_slots ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW();`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Load fetches the stored record.
func (s *Slot) Load(ctx context.Context) (storage.Record, error) {
	const query = `SELECT value FROM session_slots WHERE key = $1;`
	var value []byte
	if err := s.pool.QueryRow(ctx, query, s.key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, fmt.Errorf("load slot %s: %w", s.key, err)
	}
	return storage.Decode(value)
}

// Save upserts the record.
func (s *Slot) Save(ctx context.Context, rec storage.Record) error {
	data, err := storage.Encode(rec)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO session_slots (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
	`
	if _, err := s.pool.Exec(ctx, query, s.key, string(data)); err != nil {
		return fmt.Errorf("save slot %s: %w", s.key, err)
	}
	return nil
}

// Delete removes the record.
func (s *Slot) Delete(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM session_slots WHERE key = $1;`, s.key); err != nil {
		return fmt.Errorf("delete slot %s: %w", s.key, err)
	}
	return nil
}
