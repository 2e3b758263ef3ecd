// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"inkwell/internal/mailer"
	"inkwell/internal/middleware"
	"inkwell/internal/store"
)

// Newsletter groups the public subscription flow handlers.
type Newsletter struct {
	subscribers *store.SubscriberStore
	mailer      mailer.Mailer
	baseURL     string
}

// NewNewsletter creates a Newsletter handler group. mailer may be nil
// when email is not configured; subscriptions still work but verification
// mails are skipped.
func NewNewsletter(subscribers *store.SubscriberStore, m mailer.Mailer, baseURL string) *Newsletter {
	return &Newsletter{subscribers: subscribers, mailer: m, baseURL: baseURL}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe registers an email address and sends a verification link.
// Re-subscribing an existing address re-sends the link instead of
// creating a duplicate.
func (h *Newsletter) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address", "email")
		return
	}

	// Tie the subscription to the account when the caller is signed in.
	var accountID *uuid.UUID
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		accountID = &sess.AccountID
	}

	sub, err := h.subscribers.Subscribe(req.Email, accountID)
	if err != nil {
		writeServerError(w, "newsletter subscribe failed", err)
		return
	}

	if sub.Verified {
		writeError(w, http.StatusConflict, "email already subscribed and verified", "email")
		return
	}

	h.sendVerification(sub.Email, sub.VerifyToken)
	writeData(w, http.StatusAccepted, map[string]string{"status": "verification email sent"})
}

// Verify confirms a subscription from the emailed token link.
func (h *Newsletter) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required", "token")
		return
	}

	sub, err := h.subscribers.Verify(token)
	if err != nil {
		writeServerError(w, "newsletter verify failed", err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "unknown verification token")
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"verified": true})
}

type unsubscribeRequest struct {
	Token string `json:"token"`
}

// Unsubscribe removes a subscription by its unsubscribe token. The token
// may arrive in the body or, for one-click mail links, as a query param.
func (h *Newsletter) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var req unsubscribeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		token = req.Token
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required", "token")
		return
	}

	removed, err := h.subscribers.Unsubscribe(token)
	if err != nil {
		writeServerError(w, "newsletter unsubscribe failed", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "unknown unsubscribe token")
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"unsubscribed": true})
}

// sendVerification emails the double-opt-in link. Failures are logged but
// never fail the subscribe request; the client can retry.
func (h *Newsletter) sendVerification(email, token string) {
	if h.mailer == nil {
		slog.Warn("mailer not configured, skipping verification email", "email", email)
		return
	}

	link := fmt.Sprintf("%s/api/newsletter/verify?token=%s", h.baseURL, token)
	body := fmt.Sprintf(
		"<p>Confirm your Inkwell newsletter subscription:</p><p><a href=\"%s\">Verify email</a></p>",
		link,
	)
	if err := h.mailer.Send(email, "Confirm your subscription", body); err != nil {
		slog.Warn("verification email failed", "email", email, "error", err)
	}
}
