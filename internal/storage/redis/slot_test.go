package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/storage"
	"github.com/redis/go-redis/v9"
)

func newSlotTest(t *testing.T, ttl time.Duration) (*Slot, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	slot := NewSlot(rdb, "dash", "auth-storage", ttl)
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return slot, mr
}

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot, mr := newSlotTest(t, 0)

	if _, err := slot.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("empty load err = %v", err)
	}

	rec := storage.Record{User: &models.User{ID: "7", Role: models.RoleClient}, Role: models.RoleClient, Credential: "abc"}
	if err := slot.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("dash:auth-storage") {
		t.Fatal("expected prefixed key in redis")
	}

	got, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Credential != "abc" || got.User.ID != "7" {
		t.Fatalf("record = %+v", got)
	}

	if err := slot.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := slot.Delete(ctx); err != nil {
		t.Fatalf("delete idempotent: %v", err)
	}
	if _, err := slot.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load after delete err = %v", err)
	}
}

func TestSlotTTL(t *testing.T) {
	ctx := context.Background()
	slot, mr := newSlotTest(t, time.Minute)

	if err := slot.Save(ctx, storage.Record{Credential: "abc"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := slot.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expired load err = %v", err)
	}
}

func TestSlotCorruptValue(t *testing.T) {
	ctx := context.Background()
	slot, mr := newSlotTest(t, 0)
	if err := mr.Set("dash:auth-storage", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := slot.Load(ctx); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("corrupt load err = %v", err)
	}
}
