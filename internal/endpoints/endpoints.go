// Package endpoints wraps the backend's REST resources on top of the api
// pathway and keeps the session store in step with authentication results.
package endpoints

import (
	"context"
	"errors"
	"log"

	"github.com/hongminglow/all-in-dash/internal/api"
	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/session"
)

// Sessions is the part of the session store the endpoints mutate.
type Sessions interface {
	SetSession(ctx context.Context, user models.User, role models.Role, credential string) error
	Clear(ctx context.Context) error
	ClearIf(ctx context.Context, credential string) (bool, error)
}

var _ Sessions = (*session.Store)(nil)

// dropOnUnauthorized clears the session when err is a 401 for the credential
// that is still live. A late 401 for a credential that has since been
// replaced by a new login leaves the new session alone.
func dropOnUnauthorized(ctx context.Context, sessions Sessions, logger *log.Logger, err error) {
	rejected, ok := api.RejectedCredential(err)
	if !ok {
		return
	}
	cleared, clearErr := sessions.ClearIf(ctx, rejected)
	switch {
	case clearErr != nil && !errors.Is(clearErr, session.ErrNotHydrated):
		logger.Printf("endpoints: clear session after 401: %v", clearErr)
	case cleared:
		logger.Printf("endpoints: credential rejected, signed out")
	}
}
