// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iobic/site-go/internal/middleware"
	"github.com/iobic/site-go/internal/store"
)

// SettingResponse represents a site setting in API responses.
type SettingResponse struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// storeSettingToResponse converts a store.SiteSetting to SettingResponse.
func storeSettingToResponse(s store.SiteSetting) SettingResponse {
	resp := SettingResponse{
		ID:        s.ID,
		Key:       s.Key,
		Value:     s.Value,
		IsSystem:  s.IsSystem,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Description.Valid {
		resp.Description = &s.Description.String
	}
	return resp
}

// ListSettings handles GET /api/cms/settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.queries.ListSiteSettings(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list settings")
		return
	}
	resp := make([]SettingResponse, 0, len(settings))
	for _, s := range settings {
		resp = append(resp, storeSettingToResponse(s))
	}
	WriteSuccess(w, resp)
}

// GetSetting handles GET /api/cms/settings/{key}.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.queries.GetSiteSettingByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Setting not found")
		} else {
			WriteInternalError(w, "Failed to retrieve setting")
		}
		return
	}
	WriteSuccess(w, storeSettingToResponse(setting))
}

type upsertSettingRequest struct {
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Description *string `json:"description"`
	IsSystem    bool    `json:"is_system"`
}

// UpsertSetting handles POST /api/cms/settings: update when the key
// exists, insert otherwise. Responds 201 for an insert and 200 for an
// update.
func (h *Handler) UpsertSetting(w http.ResponseWriter, r *http.Request) {
	var req upsertSettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	if req.Key == "" {
		fieldErrors["key"] = "Key is required"
	}
	if req.Value == "" {
		fieldErrors["value"] = "Value is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	var description sql.NullString
	if req.Description != nil {
		description = sql.NullString{String: *req.Description, Valid: true}
	}

	setting, created, err := h.queries.UpsertSiteSetting(r.Context(), store.UpsertSiteSettingParams{
		Key:         req.Key,
		Value:       req.Value,
		Description: description,
		IsSystem:    req.IsSystem,
		Now:         time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to save setting")
		return
	}

	slog.Info("site setting saved",
		"key", setting.Key, "created", created, "user_id", middleware.GetUserID(r))
	if created {
		WriteCreated(w, storeSettingToResponse(setting))
		return
	}
	WriteSuccess(w, storeSettingToResponse(setting))
}
