// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// TaxonomyStore handles categories and tags.
type TaxonomyStore struct {
	db *sql.DB
}

// NewTaxonomyStore creates a new TaxonomyStore.
func NewTaxonomyStore(db *sql.DB) *TaxonomyStore {
	return &TaxonomyStore{db: db}
}

// ListCategories returns all categories with their published-post counts.
func (s *TaxonomyStore) ListCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.created_at,
		       (SELECT COUNT(*) FROM post_categories pc
		        JOIN posts p ON p.id = pc.post_id
		        WHERE pc.category_id = c.id
		          AND p.status = 'published' AND p.published_at <= NOW())
		FROM categories c ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.PostCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ListTags returns all tags alphabetically.
func (s *TaxonomyStore) ListTags() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT id, name, slug, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// EnsureCategories resolves category names to IDs, creating any that do
// not exist yet. Used when saving a post.
func (s *TaxonomyStore) EnsureCategories(names []string) ([]uuid.UUID, error) {
	return s.ensure("categories", names)
}

// EnsureTags resolves tag names to IDs, creating any that do not exist yet.
func (s *TaxonomyStore) EnsureTags(names []string) ([]uuid.UUID, error) {
	return s.ensure("tags", names)
}

func (s *TaxonomyStore) ensure(table string, names []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, name := range names {
		sl := slug.Generate(name)
		if sl == "" {
			continue
		}
		var id uuid.UUID
		err := s.db.QueryRow(`
			INSERT INTO `+table+` (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
			RETURNING id
		`, name, sl).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("ensure %s %q: %w", table, name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
