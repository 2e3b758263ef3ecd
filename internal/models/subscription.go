// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionTier is the subscription level of an account.
type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPaid SubscriptionTier = "paid"
)

// Subscription is the one-to-one billing record for an account. Paid access
// is valid only while ExpiresAt is set and in the future.
type Subscription struct {
	ID         uuid.UUID        `json:"id"`
	AccountID  uuid.UUID        `json:"account_id"`
	Tier       SubscriptionTier `json:"tier"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	CustomerID *string          `json:"-"` // Payment processor customer reference
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ActivePaid reports whether the subscription grants premium access at the
// given instant. A paid tier with a missing or past expiry is lapsed.
func (s *Subscription) ActivePaid(now time.Time) bool {
	if s.Tier != TierPaid {
		return false
	}
	return s.ExpiresAt != nil && s.ExpiresAt.After(now)
}
