// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

const subscriberColumns = `id, email, verified, verify_token, unsubscribe_token, account_id, created_at`

// SubscriberStore handles newsletter recipients. Subscribers are
// independent of accounts; an email may or may not belong to one.
type SubscriberStore struct {
	db *sql.DB
}

// NewSubscriberStore creates a new SubscriberStore.
func NewSubscriberStore(db *sql.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

func scanSubscriber(row interface{ Scan(...any) error }) (*models.NewsletterSubscriber, error) {
	sub := &models.NewsletterSubscriber{}
	err := row.Scan(
		&sub.ID, &sub.Email, &sub.Verified, &sub.VerifyToken,
		&sub.UnsubscribeToken, &sub.AccountID, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscribe registers an email address with fresh tokens. Re-subscribing
// an existing address returns the current record unchanged so the
// verification mail can be re-sent without rotating its token.
func (s *SubscriberStore) Subscribe(email string, accountID *uuid.UUID) (*models.NewsletterSubscriber, error) {
	verifyToken, err := randomToken()
	if err != nil {
		return nil, err
	}
	unsubToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	sub, err := scanSubscriber(s.db.QueryRow(`
		INSERT INTO newsletter_subscribers (email, verify_token, unsubscribe_token, account_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING `+subscriberColumns, email, verifyToken, unsubToken, accountID))
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// Verify marks the subscriber with the given token as verified. Returns
// nil if no subscriber carries the token.
func (s *SubscriberStore) Verify(token string) (*models.NewsletterSubscriber, error) {
	sub, err := scanSubscriber(s.db.QueryRow(`
		UPDATE newsletter_subscribers SET verified = TRUE
		WHERE verify_token = $1
		RETURNING `+subscriberColumns, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verify subscriber: %w", err)
	}
	return sub, nil
}

// Unsubscribe deletes the subscriber carrying the given unsubscribe token.
// Returns true if a row was removed.
func (s *SubscriberStore) Unsubscribe(token string) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM newsletter_subscribers WHERE unsubscribe_token = $1
	`, token)
	if err != nil {
		return false, fmt.Errorf("unsubscribe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unsubscribe: %w", err)
	}
	return n > 0, nil
}

// ListVerified returns all verified subscribers in subscription order.
// The newsletter sender partitions this list into delivery batches.
func (s *SubscriberStore) ListVerified() ([]models.NewsletterSubscriber, error) {
	rows, err := s.db.Query(`
		SELECT ` + subscriberColumns + `
		FROM newsletter_subscribers
		WHERE verified = TRUE
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list verified subscribers: %w", err)
	}
	defer rows.Close()

	var subs []models.NewsletterSubscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// randomToken returns a 64-character hex token for verify/unsubscribe links.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
