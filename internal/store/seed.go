// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/iobic/site-go/internal/auth"
)

// Default admin credentials, used only when the users table is empty.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@iobic.com"
	DefaultAdminPassword = "admin123"
	DefaultAdminName     = "Administrator"
)

// defaultSetting is a system setting seeded at initialization.
type defaultSetting struct {
	Key         string
	Value       string
	Description string
}

var defaultSettings = []defaultSetting{
	{"site_title", "IOBIC - AI Phone Agent", "Website title"},
	{"site_description", "AI Phone Agent for Small Businesses", "Website meta description"},
	{"contact_email", "contact@iobic.com", "Contact email address"},
	{"contact_phone", "+359 888 123 456", "Contact phone number"},
	{"facebook_url", "https://facebook.com/iobic", "Facebook page URL"},
	{"instagram_url", "https://instagram.com/iobic", "Instagram profile URL"},
	{"default_language", "bg", "Default website language"},
}

// Seed creates the default admin user and system settings. Both steps
// are skipped when the corresponding table already has rows, so Seed
// is safe to run on every startup.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	userCount, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}

	if userCount == 0 {
		passwordHash, err := auth.HashPassword(DefaultAdminPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now()
		user, err := queries.CreateUser(ctx, CreateUserParams{
			Username:     DefaultAdminUsername,
			Email:        DefaultAdminEmail,
			PasswordHash: passwordHash,
			FullName:     DefaultAdminName,
			IsAdmin:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}

		slog.Info("created default admin user",
			"id", user.ID,
			"username", user.Username,
			"email", user.Email,
		)
	}

	settings, err := queries.ListSiteSettings(ctx)
	if err != nil {
		return fmt.Errorf("listing settings: %w", err)
	}

	if len(settings) == 0 {
		now := time.Now()
		for _, s := range defaultSettings {
			if _, _, err := queries.UpsertSiteSetting(ctx, UpsertSiteSettingParams{
				Key:         s.Key,
				Value:       s.Value,
				Description: sql.NullString{String: s.Description, Valid: true},
				IsSystem:    true,
				Now:         now,
			}); err != nil {
				return fmt.Errorf("seeding setting %q: %w", s.Key, err)
			}
		}
		slog.Info("created default site settings", "count", len(defaultSettings))
	}

	return nil
}
