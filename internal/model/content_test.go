// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestIsValidType(t *testing.T) {
	for _, ct := range ContentTypes {
		if !IsValidType(ct) {
			t.Errorf("IsValidType(%q) = false, want true", ct)
		}
	}
	if IsValidType("banner") {
		t.Error(`IsValidType("banner") = true, want false`)
	}
	if IsValidType("") {
		t.Error(`IsValidType("") = true, want false`)
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		payload     string
		wantFields  []string // field paths expected in the validation error; nil means valid
	}{
		{
			name:        "valid hero",
			contentType: TypeHero,
			payload:     `{"title":"AI answers your phone","subtitle":"Never miss a call","cta":{"text":"Start now","url":"/signup"}}`,
		},
		{
			name:        "hero with image",
			contentType: TypeHero,
			payload:     `{"title":"t","subtitle":"s","cta":{"text":"c","url":"/u"},"image":"/uploads/hero.png"}`,
		},
		{
			name:        "hero missing cta",
			contentType: TypeHero,
			payload:     `{"title":"t","subtitle":"s"}`,
			wantFields:  []string{"cta"},
		},
		{
			name:        "hero cta missing url",
			contentType: TypeHero,
			payload:     `{"title":"t","subtitle":"s","cta":{"text":"c"}}`,
			wantFields:  []string{"cta.url"},
		},
		{
			name:        "valid feature",
			contentType: TypeFeature,
			payload:     `{"title":"24/7 availability","description":"Always on","icon":"phone"}`,
		},
		{
			name:        "feature missing description",
			contentType: TypeFeature,
			payload:     `{"title":"t"}`,
			wantFields:  []string{"description"},
		},
		{
			name:        "valid use case",
			contentType: TypeUseCase,
			payload:     `{"title":"Dental clinics","description":"d","industry":"healthcare","benefits":["fewer missed calls"]}`,
		},
		{
			name:        "use case empty benefits",
			contentType: TypeUseCase,
			payload:     `{"title":"t","description":"d","industry":"i","benefits":[]}`,
			wantFields:  []string{"benefits"},
		},
		{
			name:        "valid pricing plan",
			contentType: TypePricingPlan,
			payload:     `{"title":"Starter","price":"29","period":"month","description":"d","features":["100 calls"],"isPopular":true,"cta":{"text":"Buy","url":"/buy"}}`,
		},
		{
			name:        "pricing plan empty features",
			contentType: TypePricingPlan,
			payload:     `{"title":"t","price":"29","period":"month","description":"d","features":[],"cta":{"text":"Buy","url":"/buy"}}`,
			wantFields:  []string{"features"},
		},
		{
			name:        "valid testimonial",
			contentType: TypeTestimonial,
			payload:     `{"quote":"Great!","author":"A","role":"Owner","company":"C","rating":5}`,
		},
		{
			name:        "testimonial without rating",
			contentType: TypeTestimonial,
			payload:     `{"quote":"Great!","author":"A","role":"Owner","company":"C"}`,
		},
		{
			name:        "testimonial rating out of range",
			contentType: TypeTestimonial,
			payload:     `{"quote":"q","author":"a","role":"r","company":"c","rating":6}`,
			wantFields:  []string{"rating"},
		},
		{
			name:        "payload shape of another type is rejected",
			contentType: TypeTestimonial,
			payload:     `{"title":"t","subtitle":"s","cta":{"text":"c","url":"/u"}}`,
			wantFields:  []string{"content"},
		},
		{
			name:        "setting accepts free-form object",
			contentType: TypeSetting,
			payload:     `{"anything":"goes","nested":{"too":true}}`,
		},
		{
			name:        "setting rejects non-object",
			contentType: TypeSetting,
			payload:     `"just a string"`,
			wantFields:  []string{"content"},
		},
		{
			name:        "unknown type",
			contentType: "banner",
			payload:     `{}`,
			wantFields:  []string{"type"},
		},
		{
			name:        "malformed JSON",
			contentType: TypeHero,
			payload:     `{"title":`,
			wantFields:  []string{"content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.contentType, json.RawMessage(tt.payload))

			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("ValidateContent() error = %v, want nil", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ValidateContent() error = %v, want *ValidationError", err)
			}
			for _, field := range tt.wantFields {
				if _, ok := vErr.Fields[field]; !ok {
					t.Errorf("ValidateContent() missing field error for %q, got %v", field, vErr.Fields)
				}
			}
		})
	}
}
