// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iobic/site-go/internal/middleware"
	"github.com/iobic/site-go/internal/service"
	"github.com/iobic/site-go/internal/store"
)

// MediaResponse represents an uploaded file in API responses.
type MediaResponse struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"original_name"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	Path          string    `json:"path"`
	ContentItemID *int64    `json:"content_item_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// storeMediaToResponse converts a store.Medium to MediaResponse.
func storeMediaToResponse(m store.Medium) MediaResponse {
	resp := MediaResponse{
		ID:           m.ID,
		Filename:     m.Filename,
		OriginalName: m.OriginalName,
		MimeType:     m.MimeType,
		Size:         m.Size,
		Path:         m.Path,
		CreatedAt:    m.CreatedAt,
	}
	if m.ContentItemID.Valid {
		resp.ContentItemID = &m.ContentItemID.Int64
	}
	return resp
}

// UploadMedia handles POST /api/cms/media (multipart). The file field
// is "file"; an optional "content_item_id" form value links the upload
// to a content item.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided", nil)
		return
	}
	defer file.Close()

	var contentItemID *int64
	if raw := r.FormValue("content_item_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteBadRequest(w, "Invalid content item ID", nil)
			return
		}
		if _, err := h.queries.GetContentItemByID(r.Context(), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				WriteNotFound(w, "Content item not found")
			} else {
				WriteInternalError(w, "Failed to verify content item")
			}
			return
		}
		contentItemID = &id
	}

	media, err := h.media.Upload(r.Context(), file, header, contentItemID)
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	slog.Info("media uploaded",
		"media_id", media.ID, "filename", media.Filename, "size", media.Size,
		"user_id", middleware.GetUserID(r))
	WriteCreated(w, storeMediaToResponse(media))
}

// ListMediaByContentItem handles GET /api/cms/media/content/{contentItemId}.
func (h *Handler) ListMediaByContentItem(w http.ResponseWriter, r *http.Request) {
	contentItemID, err := parseIDParam(r, "contentItemId")
	if err != nil {
		WriteBadRequest(w, "Invalid content item ID", nil)
		return
	}

	media, err := h.queries.ListMediaByContentItem(r.Context(), contentItemID)
	if err != nil {
		WriteInternalError(w, "Failed to list media")
		return
	}
	resp := make([]MediaResponse, 0, len(media))
	for _, m := range media {
		resp = append(resp, storeMediaToResponse(m))
	}
	WriteSuccess(w, resp)
}

// DeleteMedia handles DELETE /api/cms/media/{id}. The stored file is
// unlinked before the row is deleted; an unlink failure keeps the row
// so a retry still has its source of truth.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	media, ok := requireEntityByID(w, r, "media", func(id int64) (store.Medium, error) {
		return h.queries.GetMediaByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.media.Delete(r.Context(), media.ID); err != nil {
		slog.Error("deleting media", "error", err, "media_id", media.ID)
		WriteInternalError(w, "Failed to delete media")
		return
	}

	slog.Info("media deleted",
		"media_id", media.ID, "filename", media.Filename,
		"user_id", middleware.GetUserID(r))
	WriteSuccess(w, map[string]bool{"success": true})
}
