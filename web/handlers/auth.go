// Package handlers provides the HTTP handlers and middleware for the
// graphchat API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/draylen/graphchat/internal/auth"
	"github.com/draylen/graphchat/internal/users"
)

const minPasswordLength = 8

// AuthHandlers contains the registration and login handlers.
type AuthHandlers struct {
	store  *users.Store
	issuer *auth.TokenIssuer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(store *users.Store, issuer *auth.TokenIssuer) *AuthHandlers {
	return &AuthHandlers{store: store, issuer: issuer}
}

// Register handles POST /api/auth/register - create an account and return a
// token.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		respondError(w, http.StatusBadRequest, "a valid email is required", nil)
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register", err)
		return
	}

	userID, err := h.store.Create(r.Context(), email, hash)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			respondError(w, http.StatusConflict, "email already registered", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to register", err)
		return
	}

	token, err := h.issuer.Issue(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusCreated, TokenResponse{Token: token, TokenType: "Bearer"})
}

// Login handles POST /api/auth/login - verify credentials and return a
// token. Unknown email and wrong password are indistinguishable.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	user, err := h.store.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to log in", err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	respondJSON(w, http.StatusOK, TokenResponse{Token: token, TokenType: "Bearer"})
}
