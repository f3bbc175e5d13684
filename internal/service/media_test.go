// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestAllowedMimeTypes(t *testing.T) {
	allowed := []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/svg+xml",
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for _, mt := range allowed {
		if !AllowedMimeTypes[mt] {
			t.Errorf("Expected %q to be in AllowedMimeTypes", mt)
		}
	}

	disallowed := []string{
		"text/plain",
		"text/html",
		"application/javascript",
		"video/mp4",
	}
	for _, mt := range disallowed {
		if AllowedMimeTypes[mt] {
			t.Errorf("Expected %q to NOT be in AllowedMimeTypes", mt)
		}
	}
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE media (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		original_name TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		path TEXT NOT NULL,
		content_item_id INTEGER,
		created_at DATETIME NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func makeUpload(t *testing.T, filename, mimeType string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{mimeType}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	return file, header
}

func TestUploadAndDelete(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	svc := NewMediaService(db, dir)
	ctx := context.Background()

	file, header := makeUpload(t, "photo.PNG", "image/png", []byte("pngdata"))
	media, err := svc.Upload(ctx, file, header, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if media.OriginalName != "photo.PNG" {
		t.Errorf("original name = %q, want photo.PNG", media.OriginalName)
	}
	if !strings.HasSuffix(media.Filename, ".png") {
		t.Errorf("stored filename %q should keep a lowercased extension", media.Filename)
	}
	if media.Filename == "photo.PNG" {
		t.Error("stored filename should not be the original name")
	}
	if media.Path != "/uploads/"+media.Filename {
		t.Errorf("path = %q, want /uploads/%s", media.Path, media.Filename)
	}
	if media.Size != int64(len("pngdata")) {
		t.Errorf("size = %d, want %d", media.Size, len("pngdata"))
	}
	if media.ContentItemID.Valid {
		t.Error("content_item_id should be null when no item was given")
	}

	stored := filepath.Join(dir, media.Filename)
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	if err := svc.Delete(ctx, media.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("file should be removed after delete, stat err = %v", err)
	}
	if _, err := svc.queries.GetMediaByID(ctx, media.ID); err != sql.ErrNoRows {
		t.Errorf("row should be gone after delete, err = %v", err)
	}
}

func TestUploadWithContentItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewMediaService(db, t.TempDir())

	itemID := int64(42)
	file, header := makeUpload(t, "doc.pdf", "application/pdf", []byte("%PDF-"))
	media, err := svc.Upload(context.Background(), file, header, &itemID)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !media.ContentItemID.Valid || media.ContentItemID.Int64 != itemID {
		t.Errorf("content_item_id = %+v, want %d", media.ContentItemID, itemID)
	}
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	db := newTestDB(t)
	svc := NewMediaService(db, t.TempDir())

	file, header := makeUpload(t, "evil.html", "text/html", []byte("<html>"))
	if _, err := svc.Upload(context.Background(), file, header, nil); err == nil {
		t.Fatal("expected an error for a disallowed MIME type")
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	db := newTestDB(t)
	svc := NewMediaService(db, t.TempDir())

	file, header := makeUpload(t, "big.png", "image/png", []byte("x"))
	header.Size = MaxUploadSize + 1
	if _, err := svc.Upload(context.Background(), file, header, nil); err == nil {
		t.Fatal("expected an error for an oversized file")
	}
}

func TestDeleteKeepsRowWhenUnlinkFails(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	svc := NewMediaService(db, dir)
	ctx := context.Background()

	file, header := makeUpload(t, "photo.png", "image/png", []byte("pngdata"))
	media, err := svc.Upload(ctx, file, header, nil)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Swap the stored file for a non-empty directory so the unlink
	// fails regardless of the uid the test runs under.
	stored := filepath.Join(dir, media.Filename)
	if err := os.Remove(stored); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(stored, "child"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, media.ID); err == nil {
		t.Fatal("expected an error when the file cannot be unlinked")
	}
	if _, err := svc.queries.GetMediaByID(ctx, media.ID); err != nil {
		t.Errorf("row should survive a failed unlink for retry, err = %v", err)
	}
}

func TestDeleteMissingMedia(t *testing.T) {
	db := newTestDB(t)
	svc := NewMediaService(db, t.TempDir())

	if err := svc.Delete(context.Background(), 999); err != sql.ErrNoRows {
		t.Errorf("delete of missing media = %v, want sql.ErrNoRows", err)
	}
}
