package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/hongminglow/all-in-dash/internal/auth"
	"github.com/hongminglow/all-in-dash/internal/http/respond"
	"github.com/hongminglow/all-in-dash/internal/middleware"
	"github.com/hongminglow/all-in-dash/internal/models"
	"github.com/hongminglow/all-in-dash/internal/models/dto"
	"github.com/hongminglow/all-in-dash/internal/storage"
)

// UsersHandler serves the authenticated user endpoints. Admins can read and
// delete any user; everyone else can only read themselves.
type UsersHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager

	mu         sync.Mutex
	pushTokens map[string]string
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(store storage.UserStore, tokens *auth.TokenManager) *UsersHandler {
	return &UsersHandler{store: store, tokens: tokens, pushTokens: make(map[string]string)}
}

// Register attaches the user routes behind bearer authentication.
func (h *UsersHandler) Register(r *mux.Router) {
	users := r.PathPrefix("/users").Subrouter()
	users.Use(middleware.RequireAuth(h.tokens))
	users.HandleFunc("/me", h.handleMe).Methods(http.MethodGet)
	users.HandleFunc("/send-notif", h.handleSendNotification).Methods(http.MethodGet)
	users.HandleFunc("/notification", h.handleNotificationToken).Methods(http.MethodPatch)
	users.HandleFunc("/verify-identity", h.handleVerifyIdentity).Methods(http.MethodPost)
	users.HandleFunc("/{id}", h.handleGet).Methods(http.MethodGet)
	users.HandleFunc("/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *UsersHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	h.writeUser(w, r, claims.Subject)
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	id := mux.Vars(r)["id"]
	if claims.Role != models.RoleAdmin && claims.Subject != id {
		respond.Error(w, http.StatusForbidden, respond.CodeForbidden, "insufficient role", "You do not have access to this user.")
		return
	}
	h.writeUser(w, r, id)
}

func (h *UsersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	if claims.Role != models.RoleAdmin {
		respond.Error(w, http.StatusForbidden, respond.CodeForbidden, "admin role required", "Only administrators can delete users.")
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "user not found")
			return
		}
		log.Printf("delete user %s: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "failed to delete user")
		return
	}
	respond.Message(w, http.StatusOK, "user deleted")
}

func (h *UsersHandler) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	h.mu.Lock()
	target, ok := h.pushTokens[claims.Subject]
	h.mu.Unlock()
	if !ok {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "no notification token registered", "Enable notifications on this device first.")
		return
	}
	log.Printf("push notification to user %s (token %s)", claims.Subject, target)
	respond.Message(w, http.StatusOK, "notification sent")
}

func (h *UsersHandler) handleNotificationToken(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	var req dto.NotificationTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, respond.CodeBadRequest, "invalid JSON payload")
		return
	}
	token := strings.TrimSpace(req.Token)
	h.mu.Lock()
	if token == "" {
		delete(h.pushTokens, claims.Subject)
	} else {
		h.pushTokens[claims.Subject] = token
	}
	h.mu.Unlock()
	respond.Message(w, http.StatusOK, "notification token updated")
}

func (h *UsersHandler) handleVerifyIdentity(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	user, err := h.store.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "user no longer exists", "Please sign in again.")
			return
		}
		log.Printf("verify identity %s: %v", claims.Subject, err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch user")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Printf("verify identity: sign token for %s: %v", user.ID, err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user})
}

func (h *UsersHandler) writeUser(w http.ResponseWriter, r *http.Request, id string) {
	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "user not found")
			return
		}
		log.Printf("fetch user %s: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "failed to fetch user")
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
