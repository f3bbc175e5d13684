// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User is an account that can sign in. Admins may mutate content,
// media, settings, and other users.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	FullName     string    `json:"full_name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Contact statuses.
const (
	ContactStatusNew       = "new"
	ContactStatusContacted = "contacted"
	ContactStatusClosed    = "closed"
)

// Contact is a lead captured from the public contact form.
// Immutable once created, except for the status field.
type Contact struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Business     string         `json:"business"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	BusinessType sql.NullString `json:"-"`
	Message      sql.NullString `json:"-"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewsletterSubscription is a unique-by-email signup record.
type NewsletterSubscription struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentItem is a typed, language-tagged unit of marketing copy.
// Content holds the type-specific JSON payload; its shape is validated
// against the type discriminator before it reaches storage.
type ContentItem struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Language  string          `json:"language"`
	Position  int64           `json:"position"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Medium is an uploaded file. ContentItemID is a weak reference:
// deleting the content item clears it rather than deleting the row.
type Medium struct {
	ID            int64         `json:"id"`
	Filename      string        `json:"filename"`
	OriginalName  string        `json:"original_name"`
	MimeType      string        `json:"mime_type"`
	Size          int64         `json:"size"`
	Path          string        `json:"path"`
	ContentItemID sql.NullInt64 `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SiteSetting is a key/value configuration row. IsSystem marks rows
// seeded at initialization; it carries no special protection.
type SiteSetting struct {
	ID          int64          `json:"id"`
	Key         string         `json:"key"`
	Value       string         `json:"value"`
	Description sql.NullString `json:"-"`
	IsSystem    bool           `json:"is_system"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Event log levels and categories.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"

	EventCategoryAuth    = "auth"
	EventCategoryContent = "content"
	EventCategoryMedia   = "media"
	EventCategoryUser    = "user"
	EventCategoryConfig  = "config"
	EventCategorySystem  = "system"
)

// Event is an audit log record, fed by the logging handler and by
// notable auth/admin actions.
type Event struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    sql.NullInt64  `json:"-"`
	Metadata  sql.NullString `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}
