// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// engagement.go defines the per-reader interaction records: likes,
// bookmarks, and deduplicated view tracking. Uniqueness constraints at the
// database level arbitrate concurrent toggles.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Like marks that an account liked a post. (PostID, AccountID) is unique.
type Like struct {
	PostID    uuid.UUID `json:"post_id"`
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks that an account saved a post. (PostID, AccountID) is unique.
type Bookmark struct {
	PostID    uuid.UUID `json:"post_id"`
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView records one tracked view per viewer per hour. ViewerHash is a
// truncated digest of the viewer's identity (account ID or client address),
// never the raw value.
type PostView struct {
	PostID     uuid.UUID `json:"post_id"`
	ViewerHash string    `json:"-"`
	ViewedHour time.Time `json:"viewed_hour"`
}
