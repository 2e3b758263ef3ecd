// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// ErrNewsletterSent is returned when an operation targets a newsletter
// that has already been delivered. Sent is terminal.
var ErrNewsletterSent = errors.New("newsletter already sent")

const newsletterColumns = `id, subject, doc, body_html, status, sent_at, recipient_count, created_by, created_at, updated_at`

// NewsletterStore handles newsletter campaign records.
type NewsletterStore struct {
	db *sql.DB
}

// NewNewsletterStore creates a new NewsletterStore.
func NewNewsletterStore(db *sql.DB) *NewsletterStore {
	return &NewsletterStore{db: db}
}

func scanNewsletter(row interface{ Scan(...any) error }) (*models.Newsletter, error) {
	n := &models.Newsletter{}
	err := row.Scan(
		&n.ID, &n.Subject, &n.Doc, &n.BodyHTML, &n.Status, &n.SentAt,
		&n.RecipientCount, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts a draft newsletter.
func (s *NewsletterStore) Create(subject string, doc json.RawMessage, bodyHTML string, createdBy uuid.UUID) (*models.Newsletter, error) {
	n, err := scanNewsletter(s.db.QueryRow(`
		INSERT INTO newsletters (subject, doc, body_html, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+newsletterColumns, subject, doc, bodyHTML, createdBy))
	if err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}
	return n, nil
}

// FindByID retrieves a newsletter by UUID. Returns nil if not found.
func (s *NewsletterStore) FindByID(id uuid.UUID) (*models.Newsletter, error) {
	n, err := scanNewsletter(s.db.QueryRow(`
		SELECT `+newsletterColumns+` FROM newsletters WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find newsletter: %w", err)
	}
	return n, nil
}

// List returns all newsletters, newest first.
func (s *NewsletterStore) List() ([]models.Newsletter, error) {
	rows, err := s.db.Query(`
		SELECT ` + newsletterColumns + ` FROM newsletters ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}
	defer rows.Close()

	var items []models.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan newsletter: %w", err)
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

// Update modifies a draft newsletter. Editing a sent newsletter returns
// ErrNewsletterSent.
func (s *NewsletterStore) Update(id uuid.UUID, subject string, doc json.RawMessage, bodyHTML string) (*models.Newsletter, error) {
	n, err := scanNewsletter(s.db.QueryRow(`
		UPDATE newsletters
		SET subject = $1, doc = $2, body_html = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'draft'
		RETURNING `+newsletterColumns, subject, doc, bodyHTML, id))
	if err == sql.ErrNoRows {
		// Either missing or already sent — disambiguate for the caller.
		existing, ferr := s.FindByID(id)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, nil
		}
		return nil, ErrNewsletterSent
	}
	if err != nil {
		return nil, fmt.Errorf("update newsletter: %w", err)
	}
	return n, nil
}

// MarkSent records the completed delivery: sets sent_at, the recipient
// count, and flips status to the terminal sent state. Guarded so a
// newsletter can only be marked sent once.
func (s *NewsletterStore) MarkSent(id uuid.UUID, sentAt time.Time, recipientCount int) error {
	res, err := s.db.Exec(`
		UPDATE newsletters
		SET status = 'sent', sent_at = $1, recipient_count = $2, updated_at = NOW()
		WHERE id = $3 AND sent_at IS NULL
	`, sentAt, recipientCount, id)
	if err != nil {
		return fmt.Errorf("mark newsletter sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark newsletter sent: %w", err)
	}
	if n == 0 {
		return ErrNewsletterSent
	}
	return nil
}
