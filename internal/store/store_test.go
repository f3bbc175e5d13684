// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueries(t *testing.T) *Queries {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// A second pooled connection would see its own empty memory DB.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))

	return New(db)
}

func TestUserCRUD(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now()

	user, err := q.CreateUser(ctx, CreateUserParams{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		FullName:     "Alice",
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	byName, err := q.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := q.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = q.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	updated, err := q.UpdateUser(ctx, UpdateUserParams{
		ID:           user.ID,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "newhash",
		FullName:     "Alice A.",
		IsAdmin:      true,
		UpdatedAt:    now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.FullName)

	require.NoError(t, q.DeleteUser(ctx, user.ID))
	_, err = q.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCountAdmins(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now()

	n, err := q.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i, admin := range []bool{true, true, false} {
		_, err := q.CreateUser(ctx, CreateUserParams{
			Username:     "user" + string(rune('a'+i)),
			Email:        "user" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "hash",
			IsAdmin:      admin,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		require.NoError(t, err)
	}

	n, err = q.CountAdmins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestNewsletterSubscriptionIdempotent(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	first, err := q.CreateNewsletterSubscription(ctx, "reader@example.com", time.Now())
	require.NoError(t, err)

	second, err := q.CreateNewsletterSubscription(ctx, "reader@example.com", time.Now())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int
	require.NoError(t, q.db.QueryRow(`SELECT COUNT(*) FROM newsletter_subscriptions`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestContentItemListOrderingAndFilters(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now()

	mk := func(title string, position int64, active bool, lang string) ContentItem {
		item, err := q.CreateContentItem(ctx, CreateContentItemParams{
			Title:     title,
			Type:      "feature",
			Content:   json.RawMessage(`{"title":"t","description":"d"}`),
			Language:  lang,
			Position:  position,
			IsActive:  active,
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(t, err)
		return item
	}

	mk("third", 3, true, "en")
	mk("first", 1, true, "en")
	first2 := mk("first-tie", 1, true, "en")
	mk("hidden", 0, false, "en")
	mk("bulgarian", 0, true, "bg")

	items, err := q.ListContentItemsByType(ctx, "feature", "en")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].Title)
	// Equal positions resolve by id, so the later insert sorts second.
	assert.Equal(t, first2.ID, items[1].ID)
	assert.Equal(t, "third", items[2].Title)

	items, err = q.ListContentItemsByType(ctx, "pricing_plan", "en")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteContentItemClearsMediaReference(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()
	now := time.Now()

	item, err := q.CreateContentItem(ctx, CreateContentItemParams{
		Title:     "hero",
		Type:      "hero",
		Content:   json.RawMessage(`{}`),
		Language:  "en",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	media, err := q.CreateMedia(ctx, CreateMediaParams{
		Filename:      "a.png",
		OriginalName:  "a.png",
		MimeType:      "image/png",
		Size:          10,
		Path:          "/uploads/a.png",
		ContentItemID: sql.NullInt64{Int64: item.ID, Valid: true},
		CreatedAt:     now,
	})
	require.NoError(t, err)

	require.NoError(t, q.DeleteContentItem(ctx, item.ID))

	kept, err := q.GetMediaByID(ctx, media.ID)
	require.NoError(t, err, "media row must survive content item deletion")
	assert.False(t, kept.ContentItemID.Valid, "reference must be cleared, not cascaded")
}

func TestUpsertSiteSetting(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	created, wasCreated, err := q.UpsertSiteSetting(ctx, UpsertSiteSettingParams{
		Key:   "site_title",
		Value: "IOBIC",
		Now:   time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, wasCreated)

	updated, wasCreated, err := q.UpsertSiteSetting(ctx, UpsertSiteSettingParams{
		Key:   "site_title",
		Value: "IOBIC - AI Phone Agent",
		Now:   time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, wasCreated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "IOBIC - AI Phone Agent", updated.Value)

	var count int
	require.NoError(t, q.db.QueryRow(`SELECT COUNT(*) FROM site_settings`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestContactStatusUpdate(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	contact, err := q.CreateContact(ctx, CreateContactParams{
		Name:      "Ivan",
		Business:  "Bakery",
		Email:     "ivan@example.com",
		Phone:     "+359888123456",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, ContactStatusNew, contact.Status)

	updated, err := q.UpdateContactStatus(ctx, contact.ID, ContactStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, ContactStatusContacted, updated.Status)
}

func TestListEventsNewestFirst(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, q.CreateEvent(ctx, CreateEventParams{
			Level:     EventLevelInfo,
			Category:  EventCategorySystem,
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := q.ListEvents(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].Message)
	assert.Equal(t, "second", events[1].Message)
}
