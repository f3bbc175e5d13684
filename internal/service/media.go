// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds business operations that combine database
// writes with side effects outside the store, such as media file I/O.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iobic/site-go/internal/store"
)

// MaxUploadSize is the upload limit for a single media file.
const MaxUploadSize = 5 * 1024 * 1024 // 5MB

// AllowedMimeTypes defines the MIME types that can be uploaded:
// images and common document formats.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/svg+xml":      true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// MediaService handles media uploads and deletion, keeping the stored
// file and the database row consistent.
type MediaService struct {
	queries   *store.Queries
	uploadDir string
}

// NewMediaService creates a media service writing files under uploadDir.
func NewMediaService(db *sql.DB, uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	return &MediaService{
		queries:   store.New(db),
		uploadDir: uploadDir,
	}
}

// Upload validates and stores an uploaded file, then records it in the
// media table. The stored filename is a generated UUID plus the
// original extension, so uploads can never collide or escape the
// uploads directory.
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, contentItemID *int64) (store.Medium, error) {
	if header.Size > MaxUploadSize {
		return store.Medium{}, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", header.Size, MaxUploadSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if !AllowedMimeTypes[mimeType] {
		return store.Medium{}, fmt.Errorf("file type %q is not allowed", mimeType)
	}

	filename := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return store.Medium{}, fmt.Errorf("creating uploads directory: %w", err)
	}

	dstPath := filepath.Join(s.uploadDir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		return store.Medium{}, fmt.Errorf("creating file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(file, MaxUploadSize+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > MaxUploadSize {
		err = fmt.Errorf("file exceeds maximum allowed size (%d bytes)", MaxUploadSize)
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return store.Medium{}, fmt.Errorf("writing file: %w", err)
	}

	var itemRef sql.NullInt64
	if contentItemID != nil {
		itemRef = sql.NullInt64{Int64: *contentItemID, Valid: true}
	}

	media, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
		Filename:      filename,
		OriginalName:  header.Filename,
		MimeType:      mimeType,
		Size:          written,
		Path:          "/uploads/" + filename,
		ContentItemID: itemRef,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		// Roll back the stored file so no orphan is left behind.
		_ = os.Remove(dstPath)
		return store.Medium{}, fmt.Errorf("recording media: %w", err)
	}

	return media, nil
}

// Delete removes a media file and its row. The file is unlinked first:
// if the unlink fails the row is kept, so it remains the source of
// truth for a retry instead of leaving an orphaned file behind.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	media, err := s.queries.GetMediaByID(ctx, id)
	if err != nil {
		return err
	}

	filePath := filepath.Join(s.uploadDir, media.Filename)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file %s: %w", media.Filename, err)
	}

	if err := s.queries.DeleteMedia(ctx, id); err != nil {
		return fmt.Errorf("deleting media row: %w", err)
	}

	return nil
}
