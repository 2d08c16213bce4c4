package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/all-in-dash/internal/auth"
	"github.com/hongminglow/all-in-dash/internal/http/respond"
)

type claimsKey struct{}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified claims on the request context.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "missing bearer token", "Please sign in to continue.")
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid or expired token", "Your session has expired. Please sign in again.")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return claims, ok
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
