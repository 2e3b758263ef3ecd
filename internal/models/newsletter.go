// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewsletterStatus represents the lifecycle state of a newsletter.
// A newsletter is created as draft and, once sent, becomes terminal:
// no further edits or re-sends are permitted.
type NewsletterStatus string

const (
	NewsletterStatusDraft NewsletterStatus = "draft"
	NewsletterStatusSent  NewsletterStatus = "sent"
)

// Newsletter is an admin-authored email campaign delivered to verified
// subscribers in batches.
type Newsletter struct {
	ID             uuid.UUID        `json:"id"`
	Subject        string           `json:"subject"`
	Doc            json.RawMessage  `json:"doc,omitempty"`
	BodyHTML       string           `json:"body_html"`
	Status         NewsletterStatus `json:"status"`
	SentAt         *time.Time       `json:"sent_at,omitempty"`
	RecipientCount int              `json:"recipient_count"`
	CreatedBy      uuid.UUID        `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsSent returns true once the newsletter has been delivered.
func (n *Newsletter) IsSent() bool {
	return n.SentAt != nil
}

// NewsletterSubscriber is a newsletter recipient. It is independent of
// Account — an email address may or may not belong to a registered user.
// Only verified subscribers receive campaigns.
type NewsletterSubscriber struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Verified         bool       `json:"verified"`
	VerifyToken      string     `json:"-"`
	UnsubscribeToken string     `json:"-"`
	AccountID        *uuid.UUID `json:"account_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
