// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentEditWindow is how long after creation the author may still edit
// a comment.
const CommentEditWindow = 15 * time.Minute

// Comment represents a reader comment on a post. Nesting is limited to one
// level: a comment either has no parent or its parent is itself top-level.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	PostID    uuid.UUID  `json:"post_id"`
	AccountID uuid.UUID  `json:"account_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Body      string     `json:"body"`
	Edited    bool       `json:"edited"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorName string    `json:"author_name,omitempty"`
	Replies    []Comment `json:"replies,omitempty"`
}

// IsReply returns true if the comment has a parent.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// EditableAt reports whether the comment is still inside its edit window
// at the given instant. The window is strict: exactly at the boundary the
// comment is no longer editable.
func (c *Comment) EditableAt(now time.Time) bool {
	return now.Sub(c.CreatedAt) < CommentEditWindow
}
