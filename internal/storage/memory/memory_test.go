package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/storage"
)

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	var slot Slot
	if _, err := slot.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("empty Load err = %v", err)
	}
	rec := storage.Record{User: &models.User{ID: "1"}, Role: models.RoleAdmin, Credential: "tok"}
	if err := slot.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := slot.Load(ctx)
	if err != nil || got.Credential != "tok" || got.User.ID != "1" {
		t.Fatalf("Load = %+v, %v", got, err)
	}
	if err := slot.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := slot.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load after delete err = %v", err)
	}
}

func TestUsersDirectory(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(
		models.User{ID: "1", Username: "ada", Email: "Ada@Example.com", Role: models.RoleAdmin},
		models.User{ID: "2", Username: "bob", Email: "bob@example.com", Role: models.RoleClient},
	)

	got, err := users.FindByUsernameOrEmail(ctx, "ada@example.com")
	if err != nil || got.ID != "1" {
		t.Fatalf("find by email = %+v, %v", got, err)
	}
	if _, err := users.FindByUsernameOrEmail(ctx, "BOB"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("usernames are case-sensitive, err = %v", err)
	}
	if err := users.DeleteUser(ctx, "2"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := users.FindByID(ctx, "2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("FindByID after delete err = %v", err)
	}
	if err := users.DeleteUser(ctx, "2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
