// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content payload types and their
// validation. A content item's payload is a tagged union keyed by the
// item's type: the discriminator selects exactly one payload shape,
// which is then validated as a whole.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Content types.
const (
	TypeHero        = "hero"
	TypeFeature     = "feature"
	TypeUseCase     = "use_case"
	TypePricingPlan = "pricing_plan"
	TypeTestimonial = "testimonial"
	TypeSetting     = "setting"
)

// ContentTypes lists every valid content type, including the legacy
// "setting" type which carries a free-form payload.
var ContentTypes = []string{TypeHero, TypeFeature, TypeUseCase, TypePricingPlan, TypeTestimonial, TypeSetting}

// IsValidType reports whether t is a known content type.
func IsValidType(t string) bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// CTA is a call-to-action link embedded in hero and pricing payloads.
type CTA struct {
	Text string `json:"text" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// HeroContent is the payload for a hero section.
type HeroContent struct {
	Title    string `json:"title" validate:"required"`
	Subtitle string `json:"subtitle" validate:"required"`
	CTA      CTA    `json:"cta" validate:"required"`
	Image    string `json:"image,omitempty"`
}

// FeatureContent is the payload for a feature blurb.
type FeatureContent struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
}

// UseCaseContent is the payload for an industry use case.
type UseCaseContent struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Industry    string   `json:"industry" validate:"required"`
	Benefits    []string `json:"benefits" validate:"required,min=1,dive,required"`
	Image       string   `json:"image,omitempty"`
}

// PricingPlanContent is the payload for a pricing plan.
type PricingPlanContent struct {
	Title       string   `json:"title" validate:"required"`
	Price       string   `json:"price" validate:"required"`
	Period      string   `json:"period" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Features    []string `json:"features" validate:"required,min=1,dive,required"`
	IsPopular   bool     `json:"isPopular,omitempty"`
	CTA         CTA      `json:"cta" validate:"required"`
}

// TestimonialContent is the payload for a customer testimonial.
type TestimonialContent struct {
	Quote   string `json:"quote" validate:"required"`
	Author  string `json:"author" validate:"required"`
	Role    string `json:"role" validate:"required"`
	Company string `json:"company" validate:"required"`
	Image   string `json:"image,omitempty"`
	Rating  int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// ValidationError reports a schema-mismatched content payload with
// field-level detail, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return "invalid content payload: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the JSON field name, not the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidateContent validates a raw content payload against the schema
// selected by the type discriminator. The type determines which single
// nested shape applies; a payload whose shape does not match its
// declared type is rejected before it reaches storage.
func ValidateContent(contentType string, raw json.RawMessage) error {
	var payload any
	switch contentType {
	case TypeHero:
		payload = &HeroContent{}
	case TypeFeature:
		payload = &FeatureContent{}
	case TypeUseCase:
		payload = &UseCaseContent{}
	case TypePricingPlan:
		payload = &PricingPlanContent{}
	case TypeTestimonial:
		payload = &TestimonialContent{}
	case TypeSetting:
		// Legacy free-form payload, only required to be a JSON object
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return &ValidationError{Fields: map[string]string{"content": "must be a JSON object"}}
		}
		return nil
	default:
		return &ValidationError{Fields: map[string]string{"type": fmt.Sprintf("unknown content type %q", contentType)}}
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return &ValidationError{Fields: map[string]string{"content": err.Error()}}
	}

	if err := validate.Struct(payload); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"content": err.Error()}}
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldPath(fe)] = validationMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath strips the payload struct name from the validator
// namespace, so HeroContent.cta.text reports as "cta.text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
