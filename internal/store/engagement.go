// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// engagement.go handles likes, bookmarks, and view tracking. Toggles rely
// on the primary-key constraint so the database, not application code,
// arbitrates concurrent requests.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// EngagementStore handles per-reader interaction records.
type EngagementStore struct {
	db *sql.DB
}

// NewEngagementStore creates a new EngagementStore.
func NewEngagementStore(db *sql.DB) *EngagementStore {
	return &EngagementStore{db: db}
}

// ToggleLike likes the post if not yet liked, otherwise removes the like.
// Returns the resulting state (true = liked).
func (s *EngagementStore) ToggleLike(postID, accountID uuid.UUID) (bool, error) {
	return s.toggle("likes", postID, accountID)
}

// ToggleBookmark bookmarks the post or removes the bookmark.
// Returns the resulting state (true = bookmarked).
func (s *EngagementStore) ToggleBookmark(postID, accountID uuid.UUID) (bool, error) {
	return s.toggle("bookmarks", postID, accountID)
}

// toggle inserts a (post, account) row; if the row already existed the
// insert is a no-op and the row is deleted instead. ON CONFLICT makes the
// race between two concurrent toggles the database's problem.
func (s *EngagementStore) toggle(table string, postID, accountID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		INSERT INTO `+table+` (post_id, account_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, postID, accountID)
	if err != nil {
		return false, fmt.Errorf("toggle %s insert: %w", table, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle %s: %w", table, err)
	}
	if inserted > 0 {
		return true, nil
	}

	if _, err := s.db.Exec(`
		DELETE FROM `+table+` WHERE post_id = $1 AND account_id = $2
	`, postID, accountID); err != nil {
		return false, fmt.Errorf("toggle %s delete: %w", table, err)
	}
	return false, nil
}

// TrackView records one view per viewer per hour, keyed by a hash of the
// viewer's identity. Best-effort telemetry: failures are logged and
// swallowed so tracking never blocks the read path.
func (s *EngagementStore) TrackView(postID uuid.UUID, viewerHash string, at time.Time) {
	_, err := s.db.Exec(`
		INSERT INTO post_views (post_id, viewer_hash, viewed_hour)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, postID, viewerHash, at.Truncate(time.Hour))
	if err != nil {
		slog.Warn("view tracking failed", "post_id", postID, "error", err)
	}
}

// ViewCount returns the number of tracked views for a post.
func (s *EngagementStore) ViewCount(postID uuid.UUID) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM post_views WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return count, nil
}

// HasLiked reports whether the account currently likes the post.
func (s *EngagementStore) HasLiked(postID, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND account_id = $2)
	`, postID, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return exists, nil
}

// ListBookmarked returns one page of the account's bookmarked posts,
// most recently bookmarked first, plus the total count.
func (s *EngagementStore) ListBookmarked(accountID uuid.UUID, page, perPage int) ([]models.Post, int, error) {
	var total int
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM bookmarks WHERE account_id = $1
	`, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookmarks: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM bookmarks b
		JOIN posts p ON p.id = b.post_id
		JOIN accounts a ON a.id = p.author_id
		WHERE b.account_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
