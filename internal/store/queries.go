// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Queries exposes typed database operations. All reads go straight to
// the store; no query result is cached in memory.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance bound to the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// ---- Users ----

const userColumns = `id, username, email, password_hash, full_name, is_admin, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the persisted row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Username, arg.Email, arg.PasswordHash, arg.FullName, arg.IsAdmin, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByUsername fetches a user by unique username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

// GetUserByEmail fetches a user by unique email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// ListUsers returns all users ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserParams holds the fields for updating a user.
type UpdateUserParams struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsAdmin      bool
	UpdatedAt    time.Time
}

// UpdateUser updates all mutable user fields.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, full_name = ?, is_admin = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Username, arg.Email, arg.PasswordHash, arg.FullName, arg.IsAdmin, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, arg.ID)
}

// DeleteUser removes a user by id.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountAdmins returns the number of users with the admin flag set.
// Used to enforce the "at least one admin" invariant.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = 1`).Scan(&n)
	return n, err
}

// ---- Contacts ----

const contactColumns = `id, name, business, email, phone, business_type, message, status, created_at`

// CreateContactParams holds the fields for creating a contact lead.
type CreateContactParams struct {
	Name         string
	Business     string
	Email        string
	Phone        string
	BusinessType sql.NullString
	Message      sql.NullString
	CreatedAt    time.Time
}

// CreateContact inserts a new lead with status "new".
func (q *Queries) CreateContact(ctx context.Context, arg CreateContactParams) (Contact, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO contacts (name, business, email, phone, business_type, message, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Business, arg.Email, arg.Phone, arg.BusinessType, arg.Message, ContactStatusNew, arg.CreatedAt,
	)
	if err != nil {
		return Contact{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Contact{}, err
	}
	return q.GetContactByID(ctx, id)
}

// GetContactByID fetches a contact by primary key.
func (q *Queries) GetContactByID(ctx context.Context, id int64) (Contact, error) {
	var c Contact
	err := q.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Business, &c.Email, &c.Phone, &c.BusinessType, &c.Message, &c.Status, &c.CreatedAt)
	return c, err
}

// ListContacts returns all leads, newest first.
func (q *Queries) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Business, &c.Email, &c.Phone, &c.BusinessType, &c.Message, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateContactStatus sets the status of a lead.
func (q *Queries) UpdateContactStatus(ctx context.Context, id int64, status string) (Contact, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE contacts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return Contact{}, err
	}
	return q.GetContactByID(ctx, id)
}

// ---- Newsletter subscriptions ----

// GetNewsletterSubscriptionByEmail fetches a subscription by email,
// case-sensitive as stored.
func (q *Queries) GetNewsletterSubscriptionByEmail(ctx context.Context, email string) (NewsletterSubscription, error) {
	var s NewsletterSubscription
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM newsletter_subscriptions WHERE email = ?`, email,
	).Scan(&s.ID, &s.Email, &s.CreatedAt)
	return s, err
}

// CreateNewsletterSubscription subscribes an email, idempotently: if
// the email is already subscribed the existing row is returned. The
// UNIQUE constraint on email is the actual safety net for concurrent
// submissions; the lookup here is a best-effort fast path.
func (q *Queries) CreateNewsletterSubscription(ctx context.Context, email string, now time.Time) (NewsletterSubscription, error) {
	if existing, err := q.GetNewsletterSubscriptionByEmail(ctx, email); err == nil {
		return existing, nil
	} else if err != sql.ErrNoRows {
		return NewsletterSubscription{}, err
	}

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscriptions (email, created_at) VALUES (?, ?)`, email, now)
	if err != nil {
		// A concurrent insert may have won the race; fall back to the
		// row the constraint protected.
		if existing, lookupErr := q.GetNewsletterSubscriptionByEmail(ctx, email); lookupErr == nil {
			return existing, nil
		}
		return NewsletterSubscription{}, err
	}
	return q.GetNewsletterSubscriptionByEmail(ctx, email)
}

// ---- Content items ----

const contentItemColumns = `id, title, type, content, language, position, is_active, created_at, updated_at`

func scanContentItem(row *sql.Row) (ContentItem, error) {
	var item ContentItem
	var content []byte
	err := row.Scan(&item.ID, &item.Title, &item.Type, &content, &item.Language, &item.Position, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	item.Content = json.RawMessage(content)
	return item, err
}

// CreateContentItemParams holds the fields for creating a content item.
// Content must already be validated against the type-specific schema.
type CreateContentItemParams struct {
	Title     string
	Type      string
	Content   json.RawMessage
	Language  string
	Position  int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateContentItem inserts a content item and returns the persisted row.
func (q *Queries) CreateContentItem(ctx context.Context, arg CreateContentItemParams) (ContentItem, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO content_items (title, type, content, language, position, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Type, string(arg.Content), arg.Language, arg.Position, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return ContentItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ContentItem{}, err
	}
	return q.GetContentItemByID(ctx, id)
}

// GetContentItemByID fetches a content item by primary key.
func (q *Queries) GetContentItemByID(ctx context.Context, id int64) (ContentItem, error) {
	return scanContentItem(q.db.QueryRowContext(ctx,
		`SELECT `+contentItemColumns+` FROM content_items WHERE id = ?`, id))
}

// ListContentItemsByType returns active items of the given type and
// language, ordered by position ascending (id breaks ties so the
// ordering is stable). An unknown type/language combination yields an
// empty list, not an error.
func (q *Queries) ListContentItemsByType(ctx context.Context, contentType, language string) ([]ContentItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contentItemColumns+` FROM content_items
		 WHERE type = ? AND language = ? AND is_active = 1
		 ORDER BY position, id`,
		contentType, language,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContentItems(rows)
}

// ListContentItems returns every content item, for the admin overview.
func (q *Queries) ListContentItems(ctx context.Context) ([]ContentItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contentItemColumns+` FROM content_items ORDER BY type, language, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContentItems(rows)
}

func collectContentItems(rows *sql.Rows) ([]ContentItem, error) {
	var items []ContentItem
	for rows.Next() {
		var item ContentItem
		var content []byte
		if err := rows.Scan(&item.ID, &item.Title, &item.Type, &content, &item.Language, &item.Position, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.Content = json.RawMessage(content)
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateContentItemParams holds the full set of mutable content item
// fields. Callers apply partial updates by loading the current row
// first.
type UpdateContentItemParams struct {
	ID        int64
	Title     string
	Type      string
	Content   json.RawMessage
	Language  string
	Position  int64
	IsActive  bool
	UpdatedAt time.Time
}

// UpdateContentItem updates a content item. The updated_at timestamp
// is refreshed on every update regardless of which fields changed.
func (q *Queries) UpdateContentItem(ctx context.Context, arg UpdateContentItemParams) (ContentItem, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE content_items SET title = ?, type = ?, content = ?, language = ?, position = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Type, string(arg.Content), arg.Language, arg.Position, arg.IsActive, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return ContentItem{}, err
	}
	return q.GetContentItemByID(ctx, arg.ID)
}

// DeleteContentItem hard-deletes a content item. Media rows referencing
// it keep existing with content_item_id cleared, via the foreign key's
// ON DELETE SET NULL.
func (q *Queries) DeleteContentItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	return err
}

// ---- Media ----

const mediaColumns = `id, filename, original_name, mime_type, size, path, content_item_id, created_at`

// CreateMediaParams holds the fields for creating a media row.
type CreateMediaParams struct {
	Filename      string
	OriginalName  string
	MimeType      string
	Size          int64
	Path          string
	ContentItemID sql.NullInt64
	CreatedAt     time.Time
}

// CreateMedia inserts a media row and returns the persisted record.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Medium, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO media (filename, original_name, mime_type, size, path, content_item_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Filename, arg.OriginalName, arg.MimeType, arg.Size, arg.Path, arg.ContentItemID, arg.CreatedAt,
	)
	if err != nil {
		return Medium{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Medium{}, err
	}
	return q.GetMediaByID(ctx, id)
}

// GetMediaByID fetches a media row by primary key.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (Medium, error) {
	var m Medium
	err := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id,
	).Scan(&m.ID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size, &m.Path, &m.ContentItemID, &m.CreatedAt)
	return m, err
}

// ListMediaByContentItem returns media rows referencing a content item.
func (q *Queries) ListMediaByContentItem(ctx context.Context, contentItemID int64) ([]Medium, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE content_item_id = ? ORDER BY created_at, id`,
		contentItemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Medium
	for rows.Next() {
		var m Medium
		if err := rows.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size, &m.Path, &m.ContentItemID, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// DeleteMedia removes a media row. The stored file is the caller's
// responsibility and must be unlinked before this is called.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}

// ---- Site settings ----

const siteSettingColumns = `id, key, value, description, is_system, created_at, updated_at`

func scanSiteSetting(row *sql.Row) (SiteSetting, error) {
	var s SiteSetting
	err := row.Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.IsSystem, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetSiteSettingByKey fetches a setting by its unique key.
func (q *Queries) GetSiteSettingByKey(ctx context.Context, key string) (SiteSetting, error) {
	return scanSiteSetting(q.db.QueryRowContext(ctx,
		`SELECT `+siteSettingColumns+` FROM site_settings WHERE key = ?`, key))
}

// ListSiteSettings returns all settings ordered by key.
func (q *Queries) ListSiteSettings(ctx context.Context) ([]SiteSetting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+siteSettingColumns+` FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []SiteSetting
	for rows.Next() {
		var s SiteSetting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.IsSystem, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// UpsertSiteSettingParams holds the fields for an upsert-by-key write.
type UpsertSiteSettingParams struct {
	Key         string
	Value       string
	Description sql.NullString
	IsSystem    bool
	Now         time.Time
}

// UpsertSiteSetting updates the setting if the key exists, otherwise
// inserts a new row. The boolean result reports whether a new row was
// created. Two concurrent upserts on a new key are settled by the
// UNIQUE constraint on key, not by this read-then-branch logic; on a
// constraint violation the write is retried as an update.
func (q *Queries) UpsertSiteSetting(ctx context.Context, arg UpsertSiteSettingParams) (SiteSetting, bool, error) {
	_, err := q.GetSiteSettingByKey(ctx, arg.Key)
	switch {
	case err == nil:
		s, err := q.updateSiteSetting(ctx, arg)
		return s, false, err
	case err != sql.ErrNoRows:
		return SiteSetting{}, false, err
	}

	_, err = q.db.ExecContext(ctx,
		`INSERT INTO site_settings (key, value, description, is_system, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Key, arg.Value, arg.Description, arg.IsSystem, arg.Now, arg.Now,
	)
	if err != nil {
		// Lost the race to a concurrent insert: last write wins.
		s, updateErr := q.updateSiteSetting(ctx, arg)
		if updateErr != nil {
			return SiteSetting{}, false, err
		}
		return s, false, nil
	}

	s, err := q.GetSiteSettingByKey(ctx, arg.Key)
	return s, true, err
}

func (q *Queries) updateSiteSetting(ctx context.Context, arg UpsertSiteSettingParams) (SiteSetting, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE site_settings SET value = ?, description = ?, is_system = ?, updated_at = ? WHERE key = ?`,
		arg.Value, arg.Description, arg.IsSystem, arg.Now, arg.Key,
	)
	if err != nil {
		return SiteSetting{}, err
	}
	return q.GetSiteSettingByKey(ctx, arg.Key)
}

// ---- Events ----

// CreateEventParams holds the fields for an event log record.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  sql.NullString
	CreatedAt time.Time
}

// CreateEvent appends a record to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.CreatedAt,
	)
	return err
}

// ListEvents returns event log records, newest first.
func (q *Queries) ListEvents(ctx context.Context, limit, offset int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, metadata, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
