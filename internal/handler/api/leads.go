// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iobic/site-go/internal/middleware"
	"github.com/iobic/site-go/internal/store"
)

// LeadResponse is the public response shape for the contact form and
// newsletter endpoints. Kept stable for the site frontend.
type LeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ContactResponse represents a lead in admin API responses.
type ContactResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Business     string    `json:"business"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	BusinessType *string   `json:"business_type,omitempty"`
	Message      *string   `json:"message,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// storeContactToResponse converts a store.Contact to ContactResponse.
func storeContactToResponse(c store.Contact) ContactResponse {
	resp := ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Business:  c.Business,
		Email:     c.Email,
		Phone:     c.Phone,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
	if c.BusinessType.Valid {
		resp.BusinessType = &c.BusinessType.String
	}
	if c.Message.Valid {
		resp.Message = &c.Message.String
	}
	return resp
}

type contactRequest struct {
	Name         string  `json:"name"`
	Business     string  `json:"business"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	BusinessType *string `json:"businessType"`
	Message      *string `json:"message"`
}

// SubmitContact handles POST /api/contact, the public contact form.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	if strings.TrimSpace(req.Business) == "" {
		fieldErrors["business"] = "Business is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "A valid email is required"
	}
	if strings.TrimSpace(req.Phone) == "" {
		fieldErrors["phone"] = "Phone is required"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	var businessType, message sql.NullString
	if req.BusinessType != nil && *req.BusinessType != "" {
		businessType = sql.NullString{String: *req.BusinessType, Valid: true}
	}
	if req.Message != nil && *req.Message != "" {
		message = sql.NullString{String: *req.Message, Valid: true}
	}

	contact, err := h.queries.CreateContact(r.Context(), store.CreateContactParams{
		Name:         req.Name,
		Business:     req.Business,
		Email:        req.Email,
		Phone:        req.Phone,
		BusinessType: businessType,
		Message:      message,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to process contact form")
		return
	}

	slog.Info("contact lead received", "contact_id", contact.ID, "business", contact.Business)
	WriteJSON(w, http.StatusCreated, LeadResponse{
		Success: true,
		Message: "Contact request received successfully",
		ID:      contact.ID,
	})
}

type newsletterRequest struct {
	Email string `json:"email"`
}

// SubscribeNewsletter handles POST /api/newsletter. Subscribing an
// already-subscribed email returns the existing record instead of an
// error, so the frontend can treat resubmission as success.
func (h *Handler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteValidationError(w, map[string]string{"email": "A valid email is required"})
		return
	}

	sub, err := h.queries.CreateNewsletterSubscription(r.Context(), req.Email, time.Now())
	if err != nil {
		WriteInternalError(w, "Failed to process newsletter subscription")
		return
	}

	WriteJSON(w, http.StatusCreated, LeadResponse{
		Success: true,
		Message: "Newsletter subscription created successfully",
		ID:      sub.ID,
	})
}

// ListContacts handles GET /api/cms/contacts, the admin lead overview.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.queries.ListContacts(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list contacts")
		return
	}
	resp := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, storeContactToResponse(c))
	}
	WriteSuccess(w, resp)
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

var validContactStatuses = map[string]bool{
	store.ContactStatusNew:       true,
	store.ContactStatusContacted: true,
	store.ContactStatusClosed:    true,
}

// UpdateContactStatus handles PUT /api/cms/contacts/{id}/status.
// Status is the only mutable field of a lead.
func (h *Handler) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	contact, ok := requireEntityByID(w, r, "contact", func(id int64) (store.Contact, error) {
		return h.queries.GetContactByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req contactStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validContactStatuses[req.Status] {
		WriteValidationError(w, map[string]string{"status": "Unknown status"})
		return
	}

	updated, err := h.queries.UpdateContactStatus(r.Context(), contact.ID, req.Status)
	if err != nil {
		WriteInternalError(w, "Failed to update contact status")
		return
	}

	slog.Info("contact status updated",
		"contact_id", updated.ID, "status", updated.Status,
		"user_id", middleware.GetUserID(r))
	WriteSuccess(w, storeContactToResponse(updated))
}
