// Copyright (c) 2025-2026 IOBIC
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/iobic/site-go/internal/store"
)

func TestSubmitContact(t *testing.T) {
	_, h := testSetup(t)

	body := `{"name":"Ivan","business":"Ivan's Bakery","email":"ivan@example.com","phone":"+359888123456","businessType":"bakery"}`
	req := newJSONRequest(t, http.MethodPost, "/api/contact", body, nil)
	w := executeHandler(t, h.SubmitContact, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var resp LeadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.ID == 0 {
		t.Errorf("response = %+v, want success with id", resp)
	}
}

func TestSubmitContactValidation(t *testing.T) {
	_, h := testSetup(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"business":"B","email":"a@b.c","phone":"1"}`, "name"},
		{"missing business", `{"name":"N","email":"a@b.c","phone":"1"}`, "business"},
		{"bad email", `{"name":"N","business":"B","email":"nope","phone":"1"}`, "email"},
		{"missing phone", `{"name":"N","business":"B","email":"a@b.c"}`, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, "/api/contact", tt.body, nil)
			w := executeHandler(t, h.SubmitContact, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			detail := unmarshalError(t, w)
			if _, ok := detail.Details[tt.wantField]; !ok {
				t.Errorf("expected %q in details, got %v", tt.wantField, detail.Details)
			}
		})
	}
}

func TestSubscribeNewsletterIdempotent(t *testing.T) {
	_, h := testSetup(t)

	body := `{"email":"reader@example.com"}`

	req := newJSONRequest(t, http.MethodPost, "/api/newsletter", body, nil)
	w := executeHandler(t, h.SubscribeNewsletter, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("first subscribe: status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	var first LeadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}

	req = newJSONRequest(t, http.MethodPost, "/api/newsletter", body, nil)
	w = executeHandler(t, h.SubscribeNewsletter, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("second subscribe: status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	var second LeadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Errorf("resubscribe created a new row: id %d vs %d", first.ID, second.ID)
	}
}

func TestUpdateContactStatus(t *testing.T) {
	db, h := testSetup(t)

	if _, err := db.Exec(
		`INSERT INTO contacts (name, business, email, phone, status, created_at)
		 VALUES ('Ivan', 'Bakery', 'ivan@example.com', '1', 'new', CURRENT_TIMESTAMP)`,
	); err != nil {
		t.Fatal(err)
	}

	req := newJSONRequest(t, http.MethodPut, "/api/cms/contacts/1/status",
		`{"status":"contacted"}`, map[string]string{"id": "1"})
	w := executeHandler(t, h.UpdateContactStatus, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	contact := unmarshalData[ContactResponse](t, w)
	if contact.Status != store.ContactStatusContacted {
		t.Errorf("status = %q, want contacted", contact.Status)
	}

	req = newJSONRequest(t, http.MethodPut, "/api/cms/contacts/1/status",
		`{"status":"bogus"}`, map[string]string{"id": "1"})
	w = executeHandler(t, h.UpdateContactStatus, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status: status = %d, want 400", w.Code)
	}
}

func TestListContactsIncludesOptionalFields(t *testing.T) {
	_, h := testSetup(t)

	body := `{"name":"Ivan","business":"Bakery","email":"ivan@example.com","phone":"1",` +
		`"businessType":"bakery","message":"Please call me after lunch"}`
	req := newJSONRequest(t, http.MethodPost, "/api/contact", body, nil)
	if w := executeHandler(t, h.SubmitContact, req); w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	req = newJSONRequest(t, http.MethodPost, "/api/contact",
		`{"name":"Maria","business":"Salon","email":"maria@example.com","phone":"2"}`, nil)
	if w := executeHandler(t, h.SubmitContact, req); w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	w := executeHandler(t, h.ListContacts, newGetRequest(t, "/api/cms/contacts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d, want 200", w.Code)
	}
	contacts := unmarshalData[[]ContactResponse](t, w)
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}

	var ivan, maria ContactResponse
	for _, c := range contacts {
		switch c.Name {
		case "Ivan":
			ivan = c
		case "Maria":
			maria = c
		}
	}
	if ivan.Message == nil || *ivan.Message != "Please call me after lunch" {
		t.Errorf("message not serialized: %+v", ivan)
	}
	if ivan.BusinessType == nil || *ivan.BusinessType != "bakery" {
		t.Errorf("business_type not serialized: %+v", ivan)
	}
	if maria.Message != nil || maria.BusinessType != nil {
		t.Errorf("optional fields should stay unset: %+v", maria)
	}
}

func TestListContactsNewestFirst(t *testing.T) {
	db, h := testSetup(t)

	for _, row := range []string{
		`('First', 'A', 'a@example.com', '1', 'new', '2026-01-01 10:00:00')`,
		`('Second', 'B', 'b@example.com', '2', 'new', '2026-01-02 10:00:00')`,
	} {
		if _, err := db.Exec(
			`INSERT INTO contacts (name, business, email, phone, status, created_at) VALUES ` + row,
		); err != nil {
			t.Fatal(err)
		}
	}

	req := newGetRequest(t, "/api/cms/contacts", nil)
	w := executeHandler(t, h.ListContacts, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	contacts := unmarshalData[[]ContactResponse](t, w)
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}
	if contacts[0].Name != "Second" {
		t.Errorf("contacts not newest first: first is %q", contacts[0].Name)
	}
}
