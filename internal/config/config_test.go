// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "Xk9#mP2$vL5@qR8*wN3^tB6!yH4&zA7%"

func TestLoad(t *testing.T) {
	t.Setenv("IOBIC_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DBPath != "./data/iobic.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true by default")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want localhost:8080", cfg.ServerAddr())
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("IOBIC_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want error for missing secret")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("IOBIC_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error for short secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("Load() error = %v, want length message", err)
	}
}

func TestLoadWeakSecret(t *testing.T) {
	t.Setenv("IOBIC_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want error for known weak secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IOBIC_SESSION_SECRET", testSecret)
	t.Setenv("IOBIC_SERVER_PORT", "9090")
	t.Setenv("IOBIC_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production env")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{testSecret, true},
		{"abcABC123", true},
		{"abcabcabc", false},
		{"ABCABC123", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
