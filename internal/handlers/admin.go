// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/newsletter"
	"inkwell/internal/richtext"
	"inkwell/internal/store"
)

// Admin groups account administration and newsletter management.
type Admin struct {
	accounts    *store.AccountStore
	newsletters *store.NewsletterStore
	sender      *newsletter.Sender
}

// NewAdmin creates an Admin handler group.
func NewAdmin(accounts *store.AccountStore, newsletters *store.NewsletterStore, sender *newsletter.Sender) *Admin {
	return &Admin{
		accounts:    accounts,
		newsletters: newsletters,
		sender:      sender,
	}
}

// AccountsList returns a paginated account listing.
func (h *Admin) AccountsList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	accounts, total, err := h.accounts.List(page, perPage)
	if err != nil {
		writeServerError(w, "account list failed", err)
		return
	}

	writePage(w, http.StatusOK, accounts, Pagination{Page: page, PerPage: perPage, Total: total})
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

// SetRole changes an account's role.
func (h *Admin) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id", "id")
		return
	}

	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role", "role")
		return
	}

	account, err := h.accounts.FindByID(id)
	if err != nil {
		writeServerError(w, "account lookup failed", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := h.accounts.SetRole(id, req.Role); err != nil {
		writeServerError(w, "role update failed", err)
		return
	}

	account.Role = req.Role
	writeData(w, http.StatusOK, account)
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

// SetSuspended suspends or reinstates an account. Suspended accounts
// cannot log in; existing sessions keep their role until expiry.
func (h *Admin) SetSuspended(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id", "id")
		return
	}

	// Admins cannot suspend themselves.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.AccountID == id {
		writeError(w, http.StatusBadRequest, "cannot suspend your own account")
		return
	}

	var req suspendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.FindByID(id)
	if err != nil {
		writeServerError(w, "account lookup failed", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := h.accounts.SetSuspended(id, req.Suspended); err != nil {
		writeServerError(w, "suspend update failed", err)
		return
	}

	account.Suspended = req.Suspended
	writeData(w, http.StatusOK, account)
}

type newsletterRequest struct {
	Subject string          `json:"subject"`
	Doc     json.RawMessage `json:"doc"`
}

// NewsletterCreate makes a new draft issue.
func (h *Admin) NewsletterCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req newsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTitle(req.Subject); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "subject")
		return
	}
	if msg := validateDoc(req.Doc); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "doc")
		return
	}

	bodyHTML, err := richtext.ToHTML(req.Doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document", "doc")
		return
	}

	issue, err := h.newsletters.Create(req.Subject, req.Doc, bodyHTML, sess.AccountID)
	if err != nil {
		writeServerError(w, "newsletter create failed", err)
		return
	}

	writeData(w, http.StatusCreated, issue)
}

// NewslettersList returns every issue, drafts first.
func (h *Admin) NewslettersList(w http.ResponseWriter, r *http.Request) {
	issues, err := h.newsletters.List()
	if err != nil {
		writeServerError(w, "newsletter list failed", err)
		return
	}
	writeData(w, http.StatusOK, issues)
}

// NewsletterUpdate edits a draft issue. Sent issues are immutable and
// yield 409.
func (h *Admin) NewsletterUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid newsletter id", "id")
		return
	}

	var req newsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTitle(req.Subject); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "subject")
		return
	}
	if msg := validateDoc(req.Doc); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "doc")
		return
	}

	bodyHTML, err := richtext.ToHTML(req.Doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document", "doc")
		return
	}

	issue, err := h.newsletters.Update(id, req.Subject, req.Doc, bodyHTML)
	switch {
	case errors.Is(err, store.ErrNewsletterSent):
		writeError(w, http.StatusConflict, "newsletter has already been sent")
		return
	case err != nil:
		writeServerError(w, "newsletter update failed", err)
		return
	case issue == nil:
		writeError(w, http.StatusNotFound, "newsletter not found")
		return
	}

	writeData(w, http.StatusOK, issue)
}

// NewsletterSend dispatches an issue to all verified subscribers, or to a
// single test recipient when ?test= is given. Test sends never mark the
// issue as sent.
func (h *Admin) NewsletterSend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid newsletter id", "id")
		return
	}

	if testRecipient := r.URL.Query().Get("test"); testRecipient != "" {
		if !validEmail(testRecipient) {
			writeError(w, http.StatusBadRequest, "invalid test recipient", "test")
			return
		}
		err := h.sender.SendTest(id, testRecipient)
		switch {
		case errors.Is(err, newsletter.ErrNoMailer):
			writeError(w, http.StatusServiceUnavailable, "no mail provider configured")
			return
		case errors.Is(err, newsletter.ErrNotFound):
			writeError(w, http.StatusNotFound, "newsletter not found")
			return
		case err != nil:
			writeServerError(w, "newsletter test send failed", err)
			return
		}
		writeData(w, http.StatusOK, map[string]string{"status": "test sent", "recipient": testRecipient})
		return
	}

	result, err := h.sender.Send(id)
	switch {
	case errors.Is(err, newsletter.ErrNoMailer):
		writeError(w, http.StatusServiceUnavailable, "no mail provider configured")
		return
	case errors.Is(err, newsletter.ErrNotFound):
		writeError(w, http.StatusNotFound, "newsletter not found")
		return
	case errors.Is(err, newsletter.ErrAlreadySent):
		writeError(w, http.StatusConflict, "newsletter has already been sent")
		return
	case err != nil:
		writeServerError(w, "newsletter send failed", err)
		return
	}

	writeData(w, http.StatusOK, result)
}
