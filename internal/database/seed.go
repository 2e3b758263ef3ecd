package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin and a sample author. No-op if any accounts already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return fmt.Errorf("seed check accounts: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Default admin. 2FA is not enabled — they must enroll on first login.
	_, err = db.Exec(`
		INSERT INTO accounts (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@inkwell.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	authorHash, err := bcrypt.GenerateFromPassword([]byte("author"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO accounts (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "author@inkwell.local", string(authorHash), "Sample Author", "author")
	if err != nil {
		return fmt.Errorf("seed insert author: %w", err)
	}

	slog.Info("database seeded with default accounts",
		"admin", "admin@inkwell.local",
		"author", "author@inkwell.local",
	)

	return nil
}
