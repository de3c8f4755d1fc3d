// ABOUTME: Account endpoints: registration, login, and the current user's profile.
// ABOUTME: Issues JWTs on register/login; profile exposes usage counters.

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genz-ai/agentchat/internal/auth"
	"github.com/genz-ai/agentchat/internal/store"
)

// RegisterRequest is the JSON request body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	RequestCount int64  `json:"requestCount"`
	TokenCount   int64  `json:"tokenCount"`
	CreatedAt    string `json:"createdAt"`
}

// AuthResponse carries a fresh token plus the account it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		RequestCount: u.RequestCount,
		TokenCount:   u.TokenCount,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// handleRegister handles POST /api/auth/register requests.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" {
		g.sendJSONError(w, http.StatusBadRequest, "email and username are required")
		return
	}
	if len(req.Password) < 8 {
		g.sendJSONError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		g.logger.Error("failed to hash password", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	u := &store.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := g.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			g.sendJSONError(w, http.StatusBadRequest, "email already registered")
			return
		}
		g.logger.Error("failed to create user", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := g.verifier.Generate(u.ID, u.Email)
	if err != nil {
		g.logger.Error("failed to generate token", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.logger.Info("user registered", "user_id", u.ID)
	g.sendJSON(w, http.StatusCreated, AuthResponse{Token: token, User: userResponse(u)})
}

// handleLogin handles POST /api/auth/login requests.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := g.store.GetUserByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		// Same response for unknown email and wrong password.
		g.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		g.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := g.verifier.Generate(u.ID, u.Email)
	if err != nil {
		g.logger.Error("failed to generate token", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.sendJSON(w, http.StatusOK, AuthResponse{Token: token, User: userResponse(u)})
}

// handleMe handles GET /api/auth/me requests for the authenticated user.
func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := auth.MustFromContext(r.Context())
	u, err := g.store.GetUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		g.logger.Error("failed to load user", "user_id", id.UserID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.sendJSON(w, http.StatusOK, userResponse(u))
}
