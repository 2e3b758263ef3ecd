// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state for other packages.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAccount creates a throwaway account and schedules its removal.
// Deleting the account cascades to its posts, comments, and engagement rows.
func testAccount(t *testing.T, db *sql.DB, role models.Role) *models.Account {
	t.Helper()

	s := NewAccountStore(db)
	email := "test-" + uuid.NewString()[:8] + "@example.test"
	a, err := s.Create(email, "secret", "Test "+string(role), role)
	if err != nil {
		t.Fatalf("create test account: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM accounts WHERE id = $1", a.ID) })
	return a
}

// testPost creates a minimal post owned by the given author.
func testPost(t *testing.T, db *sql.DB, authorID uuid.UUID, status models.PostStatus) *models.Post {
	t.Helper()

	s := NewPostStore(db)
	p, err := s.Create(&models.Post{
		AuthorID: authorID,
		Title:    "Test Post",
		Slug:     "test-post-" + uuid.NewString()[:8],
		BodyHTML: "<p>body</p>",
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return p
}
