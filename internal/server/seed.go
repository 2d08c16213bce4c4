package server

import (
	"fmt"
	"time"

	"github.com/hongminglow/all-in-dash/internal/http/handlers"
	"github.com/hongminglow/all-in-dash/internal/models"
)

// DemoUsers returns one user per role, all sharing password.
func DemoUsers(password string) ([]models.User, error) {
	hash, err := handlers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []models.User{
		{ID: "1", Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, PasswordHash: hash, CreatedAt: created},
		{ID: "2", Username: "merchant", Email: "merchant@example.com", Role: models.RoleMerchant, PasswordHash: hash, CreatedAt: created},
		{ID: "3", Username: "client", Email: "client@example.com", Phone: "+15550000003", Role: models.RoleClient, PasswordHash: hash, CreatedAt: created},
	}, nil
}
