// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("HashPassword() = %q, want argon2id prefix", hash)
	}

	// Same password must produce different hashes (random salt)
	hash2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() produced identical hashes for two calls")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{
			name:     "correct password",
			password: "correct horse battery staple",
			hash:     hash,
			want:     true,
		},
		{
			name:     "wrong password",
			password: "incorrect",
			hash:     hash,
			want:     false,
		},
		{
			name:     "empty password",
			password: "",
			hash:     hash,
			want:     false,
		},
		{
			name:     "malformed hash",
			password: "whatever",
			hash:     "not-a-hash",
			wantErr:  true,
		},
		{
			name:     "unsupported hash type",
			password: "whatever",
			hash:     "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckPassword(tt.password, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if NeedsRehash(hash) {
		t.Error("NeedsRehash() = true for a freshly created hash")
	}

	// Different memory parameter
	old := "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	if !NeedsRehash(old) {
		t.Error("NeedsRehash() = false for a hash with outdated parameters")
	}

	if !NeedsRehash("garbage") {
		t.Error("NeedsRehash() = false for a malformed hash")
	}
}
