// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that forwards WARN and ERROR
// records to the database-backed event log for auditing.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/iobic/site-go/internal/store"
)

// EventLogHandler wraps another slog.Handler and also writes records at
// or above a minimum level to the event log.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewEventLogHandler creates an EventLogHandler forwarding WARN and
// above to the event log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), queries: h.queries, level: h.level}
}

func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	level := store.EventLevelWarning
	if r.Level >= slog.LevelError {
		level = store.EventLevelError
	}

	attrs := make(map[string]any)
	var userID sql.NullInt64
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "user_id" {
			if id, ok := a.Value.Any().(int64); ok && id > 0 {
				userID = sql.NullInt64{Int64: id, Valid: true}
			}
		}
		attrs[a.Key] = a.Value.Any()
		return true
	})

	var metadata sql.NullString
	if len(attrs) > 0 {
		if data, err := json.Marshal(attrs); err == nil {
			metadata = sql.NullString{String: string(data), Valid: true}
		}
	}

	// Background context so the event is recorded even when the
	// request context is already cancelled.
	_ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     level,
		Category:  inferCategory(r.Message, attrs),
		Message:   r.Message,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: eventTime(r),
	})
}

// inferCategory derives an event category from an explicit "category"
// attribute, falling back to message keywords.
func inferCategory(message string, attrs map[string]any) string {
	if c, ok := attrs["category"].(string); ok && c != "" {
		return c
	}

	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "auth") || strings.Contains(msg, "session"):
		return store.EventCategoryAuth
	case strings.Contains(msg, "content"):
		return store.EventCategoryContent
	case strings.Contains(msg, "media") || strings.Contains(msg, "upload"):
		return store.EventCategoryMedia
	case strings.Contains(msg, "user"):
		return store.EventCategoryUser
	case strings.Contains(msg, "setting") || strings.Contains(msg, "config"):
		return store.EventCategoryConfig
	default:
		return store.EventCategorySystem
	}
}

// eventTime stamps the current time when the record lacks one.
func eventTime(r slog.Record) time.Time {
	if r.Time.IsZero() {
		return time.Now()
	}
	return r.Time
}
