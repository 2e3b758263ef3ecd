// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// postColumns are the post fields selected by every query, including the
// author's display name and the live like count.
const postColumns = `
	p.id, p.author_id, p.title, p.slug, p.doc, p.body_html, p.excerpt,
	p.status, p.premium, p.word_count, p.scheduled_for, p.published_at,
	p.created_at, p.updated_at,
	a.display_name,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)`

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Doc, &p.BodyHTML, &p.Excerpt,
		&p.Status, &p.Premium, &p.WordCount, &p.ScheduledFor, &p.PublishedAt,
		&p.CreatedAt, &p.UpdatedAt, &p.AuthorName, &p.LikeCount,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UniqueSlug derives a slug from the title, appending a numeric suffix
// until no existing post uses it. excludeID skips the post being updated
// so a post never collides with itself.
func (s *PostStore) UniqueSlug(title string, excludeID uuid.UUID) (string, error) {
	base := slug.Generate(title)
	if base == "" {
		base = "post"
	}

	candidate := base
	for n := 2; ; n++ {
		var exists bool
		err := s.db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)
		`, candidate, excludeID).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = slug.WithSuffix(base, n)
	}
}

// Create inserts a new post and returns it fully hydrated.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO posts (author_id, title, slug, doc, body_html, excerpt,
		                   status, premium, word_count, scheduled_for, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, p.AuthorID, p.Title, p.Slug, p.Doc, p.BodyHTML, p.Excerpt,
		p.Status, p.Premium, p.WordCount, p.ScheduledFor, p.PublishedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing post.
func (s *PostStore) Update(p *models.Post) error {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, doc = $3, body_html = $4, excerpt = $5,
			status = $6, premium = $7, word_count = $8, scheduled_for = $9,
			published_at = $10, updated_at = NOW()
		WHERE id = $11
	`, p.Title, p.Slug, p.Doc, p.BodyHTML, p.Excerpt,
		p.Status, p.Premium, p.WordCount, p.ScheduledFor, p.PublishedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Comments, likes, bookmarks, and views
// cascade at the database level.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// FindByID retrieves a post by UUID regardless of status. Returns nil if
// not found. Status filtering is the visibility resolver's job, not the
// store's.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts p JOIN accounts a ON a.id = p.author_id
		WHERE p.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return s.attachTaxonomy(p)
}

// FindBySlug retrieves a post by slug regardless of status. Returns nil if
// not found.
func (s *PostStore) FindBySlug(postSlug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts p JOIN accounts a ON a.id = p.author_id
		WHERE p.slug = $1
	`, postSlug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return s.attachTaxonomy(p)
}

// PublishedFilter narrows the public feed listing.
type PublishedFilter struct {
	CategorySlug string
	TagSlug      string
	Page         int
	PerPage      int
}

// ListPublished returns one page of published posts whose publication time
// has passed, newest first, plus the total count for pagination.
func (s *PostStore) ListPublished(f PublishedFilter) ([]models.Post, int, error) {
	where := `p.status = 'published' AND p.published_at <= NOW()`
	args := []any{}

	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM post_categories pc JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = p.id AND c.slug = $%d)`, len(args))
	}
	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		where += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = $%d)`, len(args))
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count published posts: %w", err)
	}

	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s
		FROM posts p JOIN accounts a ON a.id = p.author_id
		WHERE %s
		ORDER BY p.published_at DESC
		LIMIT $%d OFFSET $%d
	`, postColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByAuthor returns one page of an author's posts in any status,
// newest first, plus the total count.
func (s *PostStore) ListByAuthor(authorID uuid.UUID, page, perPage int) ([]models.Post, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count author posts: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts p JOIN accounts a ON a.id = p.author_id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, authorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list author posts: %w", err)
	}
	defer rows.Close()

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// PromoteDueScheduled publishes every scheduled post whose scheduled time
// has passed, setting published_at to the scheduled instant. Returns the
// number of posts promoted.
func (s *PostStore) PromoteDueScheduled(now time.Time) (int, error) {
	res, err := s.db.Exec(`
		UPDATE posts
		SET status = 'published', published_at = scheduled_for, updated_at = NOW()
		WHERE status = 'scheduled' AND scheduled_for <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("promote scheduled posts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("promote scheduled posts: %w", err)
	}
	return int(n), nil
}

// SetCategories replaces the post's category assignments.
func (s *PostStore) SetCategories(postID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}
	for _, cid := range categoryIDs {
		if _, err := s.db.Exec(`
			INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, cid); err != nil {
			return fmt.Errorf("assign category: %w", err)
		}
	}
	return nil
}

// SetTags replaces the post's tag assignments.
func (s *PostStore) SetTags(postID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := s.db.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tid := range tagIDs {
		if _, err := s.db.Exec(`
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tid); err != nil {
			return fmt.Errorf("assign tag: %w", err)
		}
	}
	return nil
}

// attachTaxonomy populates the post's category and tag name lists.
func (s *PostStore) attachTaxonomy(p *models.Post) (*models.Post, error) {
	rows, err := s.db.Query(`
		SELECT c.name FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = $1 ORDER BY c.name
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load post categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		p.Categories = append(p.Categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := s.db.Query(`
		SELECT t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1 ORDER BY t.name
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load post tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var name string
		if err := tagRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		p.Tags = append(p.Tags, name)
	}
	return p, tagRows.Err()
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}
