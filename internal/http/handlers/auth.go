package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/all-in-dash/internal/auth"
	"github.com/hongminglow/all-in-dash/internal/http/respond"
	"github.com/hongminglow/all-in-dash/internal/models/dto"
	"github.com/hongminglow/all-in-dash/internal/storage"
)

// AuthHandler owns the login endpoint backed by the user directory.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid JSON payload")
		return
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "identifier and password are required")
		return
	}
	user, err := h.store.FindByUsernameOrEmail(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid credentials", "Incorrect username or password.")
			return
		}
		log.Printf("login failed: error fetching user %s: %v", identifier, err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid credentials", "Incorrect username or password.")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Printf("login failed: sign token for %s: %v", user.ID, err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user})
}

// HashPassword returns the bcrypt hash stored for a seeded user.
func HashPassword(password string) (string, error) {
	if len(strings.TrimSpace(password)) < 8 || !utf8.ValidString(password) {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
