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

// ListUsers handles GET /api/cms/users. Password hashes never appear
// in the serialized rows.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list users")
		return
	}
	if users == nil {
		users = []store.User{}
	}
	WriteSuccess(w, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateUser handles POST /api/cms/users. Unlike self-registration,
// the admin flag may be set.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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
		WriteInternalError(w, "Failed to create user")
		return
	}
	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		WriteConflict(w, "Email already exists", map[string]string{"email": "Email already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to create user")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteInternalError(w, "Failed to create user")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		WriteConflict(w, "Username or email already exists", nil)
		return
	}

	slog.Info("user created",
		"user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin,
		"created_by", middleware.GetUserID(r))
	WriteCreated(w, user)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	IsAdmin  *bool   `json:"is_admin"`
}

// UpdateUser handles PUT /api/cms/users/{id}. Demoting the last
// remaining admin is rejected so the system always keeps one.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			WriteValidationError(w, map[string]string{"username": "Username cannot be empty"})
			return
		}
		if username != user.Username {
			if _, err := h.queries.GetUserByUsername(r.Context(), username); err == nil {
				WriteConflict(w, "Username already exists", map[string]string{"username": "Username already exists"})
				return
			} else if !errors.Is(err, sql.ErrNoRows) {
				WriteInternalError(w, "Failed to update user")
				return
			}
		}
		user.Username = username
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			WriteValidationError(w, map[string]string{"email": "A valid email is required"})
			return
		}
		if email != user.Email {
			if _, err := h.queries.GetUserByEmail(r.Context(), email); err == nil {
				WriteConflict(w, "Email already exists", map[string]string{"email": "Email already exists"})
				return
			} else if !errors.Is(err, sql.ErrNoRows) {
				WriteInternalError(w, "Failed to update user")
				return
			}
		}
		user.Email = email
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			WriteValidationError(w, map[string]string{"password": "Password must be at least 8 characters"})
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			WriteInternalError(w, "Failed to update user")
			return
		}
		user.PasswordHash = hash
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.IsAdmin != nil {
		if user.IsAdmin && !*req.IsAdmin {
			if ok := h.ensureNotLastAdmin(w, r); !ok {
				return
			}
		}
		user.IsAdmin = *req.IsAdmin
	}

	updated, err := h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FullName:     user.FullName,
		IsAdmin:      user.IsAdmin,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update user")
		return
	}

	slog.Info("user updated",
		"user_id", updated.ID, "updated_by", middleware.GetUserID(r))
	WriteSuccess(w, updated)
}

// DeleteUser handles DELETE /api/cms/users/{id}. Deleting the last
// remaining admin is rejected.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if user.IsAdmin {
		if ok := h.ensureNotLastAdmin(w, r); !ok {
			return
		}
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		WriteInternalError(w, "Failed to delete user")
		return
	}

	slog.Warn("user deleted",
		"user_id", user.ID, "username", user.Username,
		"deleted_by", middleware.GetUserID(r))
	WriteSuccess(w, map[string]bool{"success": true})
}

// ensureNotLastAdmin writes a 409 and returns false when only one
// admin remains.
func (h *Handler) ensureNotLastAdmin(w http.ResponseWriter, r *http.Request) bool {
	admins, err := h.queries.CountAdmins(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to check admin count")
		return false
	}
	if admins <= 1 {
		WriteConflict(w, "Cannot remove the last admin", nil)
		return false
	}
	return true
}
