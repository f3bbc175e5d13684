// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/iobic/site-go/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// EventResponse represents an audit log record in API responses.
type EventResponse struct {
	ID        int64           `json:"id"`
	Level     string          `json:"level"`
	Category  string          `json:"category"`
	Message   string          `json:"message"`
	UserID    *int64          `json:"user_id,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// storeEventToResponse converts a store.Event to EventResponse.
// Metadata rows hold JSON written by the event log handler, so they
// are passed through as a raw message.
func storeEventToResponse(e store.Event) EventResponse {
	resp := EventResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
	if e.UserID.Valid {
		resp.UserID = &e.UserID.Int64
	}
	if e.Metadata.Valid && json.Valid([]byte(e.Metadata.String)) {
		resp.Metadata = json.RawMessage(e.Metadata.String)
	}
	return resp
}

// ListEvents handles GET /api/cms/events, newest first. Supports
// ?limit= and ?offset= query parameters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			WriteBadRequest(w, "Invalid limit", nil)
			return
		}
		if n > maxEventLimit {
			n = maxEventLimit
		}
		limit = n
	}

	var offset int64
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			WriteBadRequest(w, "Invalid offset", nil)
			return
		}
		offset = n
	}

	events, err := h.queries.ListEvents(r.Context(), limit, offset)
	if err != nil {
		WriteInternalError(w, "Failed to list events")
		return
	}
	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, storeEventToResponse(e))
	}
	WriteSuccess(w, resp)
}
