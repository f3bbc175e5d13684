// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n resolves the content language for public reads. The
// site publishes in English and Bulgarian; requests that don't name a
// language fall back to Accept-Language negotiation, then to English.
package i18n

import (
	"golang.org/x/text/language"
)

// DefaultLanguage is the fallback when negotiation finds no match.
const DefaultLanguage = "en"

// SupportedLanguages lists the content languages the site serves.
var SupportedLanguages = []string{"en", "bg"}

var supported = []language.Tag{
	language.English,
	language.Bulgarian,
}

var matcher = language.NewMatcher(supported)

// IsSupported reports whether code is a supported content language.
func IsSupported(code string) bool {
	for _, lang := range SupportedLanguages {
		if lang == code {
			return true
		}
	}
	return false
}

// MatchLanguage resolves an Accept-Language header (or a bare language
// code) to a supported content language.
func MatchLanguage(acceptLang string) string {
	if acceptLang == "" {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return DefaultLanguage
		}
		tags = []language.Tag{tag}
	}

	_, idx, _ := matcher.Match(tags...)
	if idx >= 0 && idx < len(SupportedLanguages) {
		return SupportedLanguages[idx]
	}

	return DefaultLanguage
}
