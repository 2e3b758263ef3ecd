// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether the status is one of the defined values.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post represents a rich-text article. Doc holds the editor's document tree
// as raw JSON; BodyHTML is the rendered and sanitized markup served to readers.
type Post struct {
	ID           uuid.UUID       `json:"id"`
	AuthorID     uuid.UUID       `json:"author_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Doc          json.RawMessage `json:"doc,omitempty"`
	BodyHTML     string          `json:"body_html"`
	Excerpt      *string         `json:"excerpt,omitempty"`
	Status       PostStatus      `json:"status"`
	Premium      bool            `json:"premium"`
	WordCount    int             `json:"word_count"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Virtual fields populated by store methods.
	AuthorName string   `json:"author_name,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	LikeCount  int      `json:"like_count"`
}

// IsPublished returns true if the post is published and its publication
// time has passed. Scheduled posts with a future published_at are not
// considered published even if their status was flipped early.
func (p *Post) IsPublished(now time.Time) bool {
	return p.Status == PostStatusPublished &&
		p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// Category represents a content category. Posts may belong to several.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by store methods.
	PostCount int `json:"post_count"`
}

// Tag represents a free-form content tag.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
