// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iobic/site-go/internal/auth"
	"github.com/iobic/site-go/internal/middleware"
	"github.com/iobic/site-go/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. Failure is reported uniformly
// whether the username is unknown or the password is wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{
			"username": "Username and password are required",
		})
		return
	}

	if h.loginGuard != nil {
		if locked, remaining := h.loginGuard.IsAccountLocked(req.Username); locked {
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				"Too many failed attempts, try again in "+remaining.Round(time.Second).String(), nil)
			return
		}
	}

	user, err := h.queries.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Login failed")
			return
		}
		h.failLogin(w, r, req.Username)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, r, req.Username)
		return
	}

	if h.loginGuard != nil {
		h.loginGuard.RecordSuccessfulLogin(req.Username)
	}

	// Upgrade the stored hash when parameters have changed since it
	// was created. Failure here must not block the login.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			updated, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
				ID:           user.ID,
				Username:     user.Username,
				Email:        user.Email,
				PasswordHash: newHash,
				FullName:     user.FullName,
				IsAdmin:      user.IsAdmin,
				UpdatedAt:    time.Now(),
			})
			if err == nil {
				user = updated
			}
		}
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		WriteInternalError(w, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	WriteSuccess(w, user)
}

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, username string) {
	if h.loginGuard != nil {
		if locked, remaining := h.loginGuard.RecordFailedAttempt(username); locked {
			slog.Warn("account locked after failed logins",
				"username", username, "remote_addr", r.RemoteAddr)
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				"Too many failed attempts, try again in "+remaining.Round(time.Second).String(), nil)
			return
		}
	}
	slog.Warn("failed login attempt", "username", username, "remote_addr", r.RemoteAddr)
	WriteUnauthorized(w, "Invalid username or password")
}

// Logout handles POST /api/auth/logout. Destroying an absent session is
// still a success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		WriteInternalError(w, "Logout failed")
		return
	}

	if userID != 0 {
		slog.Info("user logged out", "user_id", userID)
	}
	WriteSuccess(w, map[string]bool{"success": true})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Register handles POST /api/auth/register. Self-registered accounts
// are never admins.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		fieldErrors["username"] = "Username is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "A valid email is required"
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if _, err := h.queries.GetUserByUsername(r.Context(), req.Username); err == nil {
		WriteConflict(w, "Username already exists", map[string]string{"username": "Username already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Registration failed")
		return
	}
	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteConflict(w, "Email already exists", map[string]string{"email": "Email already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Registration failed")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "Registration failed")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// The unique indexes catch registrations racing on the same
		// username or email.
		WriteConflict(w, "Username or email already exists", nil)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	WriteCreated(w, user)
}

// MeResponse is the identity-check response shape.
type MeResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *store.User `json:"user,omitempty"`
}

// Me handles GET /api/auth/me. Without a session it answers 401 with
// the same body shape, so the frontend can branch on either.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteJSON(w, http.StatusUnauthorized, MeResponse{Authenticated: false})
		return
	}
	WriteJSON(w, http.StatusOK, MeResponse{Authenticated: true, User: user})
}
