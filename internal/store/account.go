// Package store provides database access methods for all Inkwell entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

const accountColumns = `id, email, password_hash, display_name, role, suspended, totp_secret, totp_enabled, created_at, updated_at`

// AccountStore handles all account-related database operations.
type AccountStore struct {
	db *sql.DB
}

// NewAccountStore creates a new AccountStore with the given database connection.
func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role, &a.Suspended,
		&a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindByEmail retrieves an account by email address. Returns nil if not found.
func (s *AccountStore) FindByEmail(email string) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRow(
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return a, nil
}

// FindByID retrieves an account by UUID. Returns nil if not found.
func (s *AccountStore) FindByID(id uuid.UUID) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRow(
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return a, nil
}

// List returns one page of accounts ordered by creation date, plus the
// total count for pagination.
func (s *AccountStore) List(page, perPage int) ([]models.Account, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT `+accountColumns+`
		FROM accounts ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, total, rows.Err()
}

// Create inserts a new account with a bcrypt-hashed password.
func (s *AccountStore) Create(email, password, displayName string, role models.Role) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a, err := scanAccount(s.db.QueryRow(`
		INSERT INTO accounts (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns, email, string(hash), displayName, role))
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// SetRole changes an account's role.
func (s *AccountStore) SetRole(accountID uuid.UUID, role models.Role) error {
	_, err := s.db.Exec(`
		UPDATE accounts SET role = $1, updated_at = NOW() WHERE id = $2
	`, role, accountID)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

// SetSuspended suspends or reinstates an account. Suspended accounts
// cannot log in.
func (s *AccountStore) SetSuspended(accountID uuid.UUID, suspended bool) error {
	_, err := s.db.Exec(`
		UPDATE accounts SET suspended = $1, updated_at = NOW() WHERE id = $2
	`, suspended, accountID)
	if err != nil {
		return fmt.Errorf("set suspended: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for an account (during 2FA setup).
func (s *AccountStore) SetTOTPSecret(accountID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE accounts SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, accountID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for an account (after code verification).
func (s *AccountStore) EnableTOTP(accountID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE accounts SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, accountID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// Delete removes an account by ID.
func (s *AccountStore) Delete(accountID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *AccountStore) CheckPassword(account *models.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}
