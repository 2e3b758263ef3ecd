// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Comment business-rule errors. Handlers map each to a distinct HTTP
// response, so "reply too deep" is never confused with "parent missing"
// and an expired edit window is never confused with "not the author".
var (
	ErrParentNotFound    = errors.New("parent comment not found")
	ErrParentWrongPost   = errors.New("parent comment belongs to a different post")
	ErrMaxDepth          = errors.New("replies to replies are not allowed")
	ErrNotCommentAuthor  = errors.New("only the comment author may edit it")
	ErrEditWindowExpired = errors.New("comment edit window has expired")
)

const commentColumns = `
	c.id, c.post_id, c.account_id, c.parent_id, c.body, c.edited,
	c.created_at, c.updated_at, a.display_name`

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(
		&c.ID, &c.PostID, &c.AccountID, &c.ParentID, &c.Body, &c.Edited,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a comment, enforcing the nesting rules: a parent must
// exist, belong to the same post, and be top-level itself.
func (s *CommentStore) Create(postID, accountID uuid.UUID, parentID *uuid.UUID, body string) (*models.Comment, error) {
	if parentID != nil {
		var parentPostID uuid.UUID
		var parentParent *uuid.UUID
		err := s.db.QueryRow(`
			SELECT post_id, parent_id FROM comments WHERE id = $1
		`, *parentID).Scan(&parentPostID, &parentParent)
		if err == sql.ErrNoRows {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("check parent comment: %w", err)
		}
		if parentPostID != postID {
			return nil, ErrParentWrongPost
		}
		if parentParent != nil {
			return nil, ErrMaxDepth
		}
	}

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, account_id, parent_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, postID, accountID, parentID, body).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.FindByID(id)
}

// FindByID retrieves a comment by UUID. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(`
		SELECT `+commentColumns+`
		FROM comments c JOIN accounts a ON a.id = c.account_id
		WHERE c.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// Edit updates a comment's body. Only the original author may edit, and
// only while the edit window is open; each failure has its own error.
func (s *CommentStore) Edit(id, editorID uuid.UUID, body string, now time.Time) (*models.Comment, error) {
	c, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	if c.AccountID != editorID {
		return nil, ErrNotCommentAuthor
	}
	if !c.EditableAt(now) {
		return nil, ErrEditWindowExpired
	}

	_, err = s.db.Exec(`
		UPDATE comments SET body = $1, edited = TRUE, updated_at = NOW() WHERE id = $2
	`, body, id)
	if err != nil {
		return nil, fmt.Errorf("edit comment: %w", err)
	}
	return s.FindByID(id)
}

// Delete removes a comment. Replies cascade at the database level, so
// deleting a top-level comment removes its whole thread.
func (s *CommentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ListByPost returns the post's comments threaded: top-level comments in
// creation order, each carrying its replies.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT `+commentColumns+`
		FROM comments c JOIN accounts a ON a.id = c.account_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var flat []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		flat = append(flat, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Thread replies under their parents. One level deep by invariant.
	byID := make(map[uuid.UUID]int)
	var top []models.Comment
	for _, c := range flat {
		if c.ParentID == nil {
			top = append(top, c)
			byID[c.ID] = len(top) - 1
		}
	}
	for _, c := range flat {
		if c.ParentID != nil {
			if i, ok := byID[*c.ParentID]; ok {
				top[i].Replies = append(top[i].Replies, c)
			}
		}
	}
	return top, nil
}

// CountByPost returns the number of comments on a post, replies included.
func (s *CommentStore) CountByPost(postID uuid.UUID) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
