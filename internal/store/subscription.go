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
)

const subscriptionColumns = `id, account_id, tier, expires_at, customer_id, created_at, updated_at`

// SubscriptionStore handles the one-to-one billing records for accounts.
type SubscriptionStore struct {
	db *sql.DB
}

// NewSubscriptionStore creates a new SubscriptionStore.
func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// FindByAccount retrieves the account's subscription. Returns nil if the
// account has no subscription record.
func (s *SubscriptionStore) FindByAccount(accountID uuid.UUID) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := s.db.QueryRow(`
		SELECT `+subscriptionColumns+` FROM subscriptions WHERE account_id = $1
	`, accountID).Scan(
		&sub.ID, &sub.AccountID, &sub.Tier, &sub.ExpiresAt, &sub.CustomerID,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return sub, nil
}

// Upsert creates or replaces the account's subscription record.
func (s *SubscriptionStore) Upsert(accountID uuid.UUID, tier models.SubscriptionTier, expiresAt *time.Time, customerID *string) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := s.db.QueryRow(`
		INSERT INTO subscriptions (account_id, tier, expires_at, customer_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			expires_at = EXCLUDED.expires_at,
			customer_id = COALESCE(EXCLUDED.customer_id, subscriptions.customer_id),
			updated_at = NOW()
		RETURNING `+subscriptionColumns,
		accountID, tier, expiresAt, customerID,
	).Scan(
		&sub.ID, &sub.AccountID, &sub.Tier, &sub.ExpiresAt, &sub.CustomerID,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}
	return sub, nil
}
