package endpoints

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hongminglow/all-in-dash/internal/api"
	"github.com/hongminglow/all-in-dash/internal/models/dto"
)

// Auth signs the dashboard user in and out.
type Auth struct {
	client   *api.Client
	sessions Sessions
	logger   *log.Logger
}

// NewAuth constructs the auth endpoints.
func NewAuth(client *api.Client, sessions Sessions, logger *log.Logger) *Auth {
	if logger == nil {
		logger = log.Default()
	}
	return &Auth{client: client, sessions: sessions, logger: logger}
}

// Login exchanges an identifier and password for a credential and installs the
// returned identity as the current session. A rejected login leaves the
// current session untouched.
func (a *Auth) Login(ctx context.Context, identifier, password string) (dto.LoginResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return dto.LoginResponse{}, errors.New("identifier and password are required")
	}
	resp, err := api.Post[dto.LoginResponse](ctx, a.client, "/auth/login", dto.LoginRequest{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if resp.Token == "" || resp.User.ID == "" {
		return dto.LoginResponse{}, errors.New("login response missing token or user")
	}
	if err := a.sessions.SetSession(ctx, resp.User, resp.User.Role, resp.Token); err != nil {
		return resp, fmt.Errorf("store session: %w", err)
	}
	a.logger.Printf("auth: signed in %s as %s", resp.User.Username, resp.User.Role.Normalize())
	return resp, nil
}

// Logout ends the session locally. The backend keeps no session state.
func (a *Auth) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
