// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iobic/site-go/internal/i18n"
	"github.com/iobic/site-go/internal/middleware"
	"github.com/iobic/site-go/internal/model"
	"github.com/iobic/site-go/internal/store"
)

// ListContentByType handles GET /api/cms/content/{type}. Only active
// items are returned, ordered by position. The language comes from the
// ?language= query parameter, falling back to Accept-Language
// negotiation (en/bg).
func (h *Handler) ListContentByType(w http.ResponseWriter, r *http.Request) {
	contentType := chi.URLParam(r, "type")
	if !model.IsValidType(contentType) {
		WriteBadRequest(w, "Invalid content type", map[string]string{"type": "Unknown content type"})
		return
	}

	lang := r.URL.Query().Get("language")
	if lang == "" {
		lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
	}

	items, err := h.queries.ListContentItemsByType(r.Context(), contentType, lang)
	if err != nil {
		WriteInternalError(w, "Failed to list content items")
		return
	}
	if items == nil {
		items = []store.ContentItem{}
	}
	WriteSuccess(w, items)
}

// ListAllContent handles GET /api/cms/content. Unlike the public
// per-type listing it returns every item, inactive ones included, in
// all languages.
func (h *Handler) ListAllContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListContentItems(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list content items")
		return
	}
	if items == nil {
		items = []store.ContentItem{}
	}
	WriteSuccess(w, items)
}

// GetContentItem handles GET /api/cms/content/item/{id}.
func (h *Handler) GetContentItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "content item", func(id int64) (store.ContentItem, error) {
		return h.queries.GetContentItemByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, item)
}

type createContentRequest struct {
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Content  json.RawMessage `json:"content"`
	Language string          `json:"language"`
	Position int64           `json:"position"`
	IsActive *bool           `json:"is_active"`
}

// CreateContentItem handles POST /api/cms/content. The content payload
// is validated against the shape its type declares before anything is
// persisted.
func (h *Handler) CreateContentItem(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	if req.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if !model.IsValidType(req.Type) {
		fieldErrors["type"] = "Unknown content type"
	}
	if !i18n.IsSupported(req.Language) {
		fieldErrors["language"] = "Unsupported language"
	}
	if len(req.Content) == 0 {
		fieldErrors["content"] = "Content payload is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if err := model.ValidateContent(req.Type, req.Content); err != nil {
		writeContentValidationError(w, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now()
	item, err := h.queries.CreateContentItem(r.Context(), store.CreateContentItemParams{
		Title:     req.Title,
		Type:      req.Type,
		Content:   req.Content,
		Language:  req.Language,
		Position:  req.Position,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create content item")
		return
	}

	slog.Info("content item created",
		"content_id", item.ID, "type", item.Type, "language", item.Language,
		"user_id", middleware.GetUserID(r))
	WriteCreated(w, item)
}

type updateContentRequest struct {
	Title    *string         `json:"title"`
	Type     *string         `json:"type"`
	Content  json.RawMessage `json:"content"`
	Language *string         `json:"language"`
	Position *int64          `json:"position"`
	IsActive *bool           `json:"is_active"`
}

// UpdateContentItem handles PUT /api/cms/content/{id}. Fields absent
// from the body keep their current values; when type or content change
// the merged pair is re-validated. updated_at is refreshed on every
// update.
func (h *Handler) UpdateContentItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "content item", func(id int64) (store.ContentItem, error) {
		return h.queries.GetContentItemByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req updateContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			WriteValidationError(w, map[string]string{"title": "Title cannot be empty"})
			return
		}
		item.Title = *req.Title
	}
	if req.Type != nil {
		if !model.IsValidType(*req.Type) {
			WriteValidationError(w, map[string]string{"type": "Unknown content type"})
			return
		}
		item.Type = *req.Type
	}
	if req.Language != nil {
		if !i18n.IsSupported(*req.Language) {
			WriteValidationError(w, map[string]string{"language": "Unsupported language"})
			return
		}
		item.Language = *req.Language
	}
	if req.Position != nil {
		item.Position = *req.Position
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if len(req.Content) > 0 {
		item.Content = req.Content
	}

	// Re-validate whenever the payload or its discriminator moved.
	if len(req.Content) > 0 || req.Type != nil {
		if err := model.ValidateContent(item.Type, item.Content); err != nil {
			writeContentValidationError(w, err)
			return
		}
	}

	updated, err := h.queries.UpdateContentItem(r.Context(), store.UpdateContentItemParams{
		ID:        item.ID,
		Title:     item.Title,
		Type:      item.Type,
		Content:   item.Content,
		Language:  item.Language,
		Position:  item.Position,
		IsActive:  item.IsActive,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update content item")
		return
	}

	slog.Info("content item updated",
		"content_id", updated.ID, "user_id", middleware.GetUserID(r))
	WriteSuccess(w, updated)
}

// DeleteContentItem handles DELETE /api/cms/content/{id}. Media rows
// referencing the item keep existing with their reference cleared by
// the foreign key.
func (h *Handler) DeleteContentItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "content item", func(id int64) (store.ContentItem, error) {
		return h.queries.GetContentItemByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteContentItem(r.Context(), item.ID); err != nil {
		WriteInternalError(w, "Failed to delete content item")
		return
	}

	slog.Info("content item deleted",
		"content_id", item.ID, "type", item.Type, "user_id", middleware.GetUserID(r))
	WriteSuccess(w, map[string]bool{"success": true})
}

func writeContentValidationError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		WriteValidationError(w, verr.Fields)
		return
	}
	WriteBadRequest(w, err.Error(), nil)
}
