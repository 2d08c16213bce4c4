package endpoints

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/hongminglow/all-in-dash/internal/api"
	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/models/dto"
)

// Users reads and manages user records.
type Users struct {
	client   *api.Client
	sessions Sessions
	logger   *log.Logger
}

// NewUsers constructs the user endpoints.
func NewUsers(client *api.Client, sessions Sessions, logger *log.Logger) *Users {
	if logger == nil {
		logger = log.Default()
	}
	return &Users{client: client, sessions: sessions, logger: logger}
}

// Me returns the user the current credential belongs to.
func (u *Users) Me(ctx context.Context) (models.User, error) {
	user, err := api.Get[models.User](ctx, u.client, "/users/me", nil)
	dropOnUnauthorized(ctx, u.sessions, u.logger, err)
	return user, err
}

// ByID returns one user.
func (u *Users) ByID(ctx context.Context, id string) (models.User, error) {
	if id == "" {
		return models.User{}, errors.New("user id is required")
	}
	user, err := api.Get[models.User](ctx, u.client, "/users/"+url.PathEscape(id), nil)
	dropOnUnauthorized(ctx, u.sessions, u.logger, err)
	return user, err
}

// Delete removes one user and returns the backend's acknowledgement.
func (u *Users) Delete(ctx context.Context, id string) (dto.MessageResponse, error) {
	if id == "" {
		return dto.MessageResponse{}, errors.New("user id is required")
	}
	out, err := api.Delete[dto.MessageResponse](ctx, u.client, "/users/"+url.PathEscape(id))
	dropOnUnauthorized(ctx, u.sessions, u.logger, err)
	return out, err
}

// SendNotification asks the backend to push a test notification to the current user.
func (u *Users) SendNotification(ctx context.Context) error {
	_, err := api.Get[dto.MessageResponse](ctx, u.client, "/users/send-notif", nil)
	dropOnUnauthorized(ctx, u.sessions, u.logger, err)
	return err
}

// UpdateNotificationToken registers token as the current user's push target.
func (u *Users) UpdateNotificationToken(ctx context.Context, token string) error {
	_, err := api.Patch[dto.MessageResponse](ctx, u.client, "/users/notification", dto.NotificationTokenRequest{Token: token})
	dropOnUnauthorized(ctx, u.sessions, u.logger, err)
	return err
}

// VerifyIdentity re-confirms the current credential with the backend and
// installs the fresh identity and credential it returns.
func (u *Users) VerifyIdentity(ctx context.Context) (dto.LoginResponse, error) {
	resp, err := api.Post[dto.LoginResponse](ctx, u.client, "/users/verify-identity", nil)
	if err != nil {
		dropOnUnauthorized(ctx, u.sessions, u.logger, err)
		return dto.LoginResponse{}, err
	}
	if resp.Token == "" || resp.User.ID == "" {
		return dto.LoginResponse{}, errors.New("verify identity response missing token or user")
	}
	if err := u.sessions.SetSession(ctx, resp.User, resp.User.Role, resp.Token); err != nil {
		return resp, fmt.Errorf("store session: %w", err)
	}
	return resp, nil
}
