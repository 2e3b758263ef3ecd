// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"time"

	"inkwell/internal/billing"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Subscription groups the account subscription handlers.
type Subscription struct {
	subscriptions *store.SubscriptionStore
	billing       *billing.Client
}

// NewSubscription creates a Subscription handler group. billing may be
// nil when no payment processor is configured; refresh then returns 503.
func NewSubscription(subscriptions *store.SubscriptionStore, b *billing.Client) *Subscription {
	return &Subscription{subscriptions: subscriptions, billing: b}
}

// subscriptionView is what callers see of their subscription record.
type subscriptionView struct {
	Tier      models.SubscriptionTier `json:"tier"`
	ExpiresAt *time.Time              `json:"expires_at,omitempty"`
	Active    bool                    `json:"active"`
}

// Get returns the caller's subscription. Accounts without a record are
// reported as free tier.
func (h *Subscription) Get(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	sub, err := h.subscriptions.FindByAccount(viewer.ID)
	if err != nil {
		writeServerError(w, "subscription lookup failed", err)
		return
	}

	view := subscriptionView{Tier: models.TierFree}
	if sub != nil {
		view.Tier = sub.Tier
		view.ExpiresAt = sub.ExpiresAt
		view.Active = sub.ActivePaid(time.Now())
	}

	writeData(w, http.StatusOK, view)
}

// Refresh re-syncs the caller's subscription from the payment processor.
// A billing failure leaves the stored record untouched.
func (h *Subscription) Refresh(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	if h.billing == nil {
		writeError(w, http.StatusServiceUnavailable, "billing is not configured")
		return
	}

	sub, err := h.subscriptions.FindByAccount(viewer.ID)
	if err != nil {
		writeServerError(w, "subscription lookup failed", err)
		return
	}
	if sub == nil || sub.CustomerID == nil {
		writeError(w, http.StatusBadRequest, "no billing customer on file")
		return
	}

	status, err := h.billing.CustomerStatus(r.Context(), *sub.CustomerID)
	if err != nil {
		writeServerError(w, "billing status failed", err)
		return
	}

	tier := models.TierFree
	if status.Active {
		tier = models.TierPaid
	}

	updated, err := h.subscriptions.Upsert(viewer.ID, tier, status.ExpiresAt, sub.CustomerID)
	if err != nil {
		writeServerError(w, "subscription update failed", err)
		return
	}

	writeData(w, http.StatusOK, subscriptionView{
		Tier:      updated.Tier,
		ExpiresAt: updated.ExpiresAt,
		Active:    updated.ActivePaid(time.Now()),
	})
}
