// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/access"
	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "feed:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	Accounts      *store.AccountStore
	PostStore     *store.PostStore
	CommentStore  *store.CommentStore
	Taxonomy      *store.TaxonomyStore
	EngStore      *store.EngagementStore
	Subscriptions *store.SubscriptionStore
	Gate          *access.Gate
	FeedCache     *cache.FeedCache
	Auth          *Auth
	Posts         *Posts
	Comments      *Comments
	Engagement    *Engagement
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	accounts := store.NewAccountStore(db)
	posts := store.NewPostStore(db)
	comments := store.NewCommentStore(db)
	taxonomy := store.NewTaxonomyStore(db)
	engagement := store.NewEngagementStore(db)
	subscriptions := store.NewSubscriptionStore(db)
	gate := access.NewGate(subscriptions)
	feed := cache.NewFeedCache(vk, cache.DefaultFeedTTL)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		Sessions:      sessions,
		Accounts:      accounts,
		PostStore:     posts,
		CommentStore:  comments,
		Taxonomy:      taxonomy,
		EngStore:      engagement,
		Subscriptions: subscriptions,
		Gate:          gate,
		FeedCache:     feed,
		Auth:          NewAuth(sessions, accounts),
		Posts:         NewPosts(posts, taxonomy, engagement, gate, feed),
		Comments:      NewComments(comments, posts),
		Engagement:    NewEngagement(engagement, posts),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(accountID uuid.UUID, email string, role models.Role) *session.Data {
	return &session.Data{
		AccountID:   accountID,
		Email:       email,
		DisplayName: "Test User",
		Role:        string(role),
		TwoFADone:   true,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// testAccount creates a throwaway account and removes it afterwards.
func testAccount(t *testing.T, accounts *store.AccountStore, role models.Role) *models.Account {
	t.Helper()
	email := "handler-" + uuid.NewString()[:8] + "@example.test"
	account, err := accounts.Create(email, "test-password-1", "Test User", role)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	t.Cleanup(func() { accounts.Delete(account.ID) })
	return account
}

// cleanPosts removes test posts by slug.
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", s)
	}
}
