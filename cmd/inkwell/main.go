// Package main is the entry point for the Inkwell API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/access"
	"inkwell/internal/billing"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/mailer"
	"inkwell/internal/newsletter"
	"inkwell/internal/router"
	"inkwell/internal/scheduler"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session store backed by Valkey. Outside development, session
	// cookies are Secure (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())

	// Data stores.
	accountStore := store.NewAccountStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)
	taxonomyStore := store.NewTaxonomyStore(db)
	engagementStore := store.NewEngagementStore(db)
	newsletterStore := store.NewNewsletterStore(db)
	subscriberStore := store.NewSubscriberStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)

	// Premium gate over the subscription store.
	gate := access.NewGate(subscriptionStore)

	// Feed cache (published-feed JSON in Valkey).
	feedCache := cache.NewFeedCache(valkeyClient, cache.DefaultFeedTTL)

	// Connect to S3-compatible object storage (optional — the app works
	// without it, media uploads return 503).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3PublicBucket, cfg.S3PrivateBucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			slog.Info("s3 storage connected",
				"endpoint", cfg.S3Endpoint,
				"public_bucket", cfg.S3PublicBucket,
				"private_bucket", cfg.S3PrivateBucket,
			)
		}
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// Outbound email via Mailjet (optional — newsletter sends are refused
	// without it, subscription confirmations are skipped).
	var mailClient mailer.Mailer
	if cfg.MailjetPublicKey != "" && cfg.MailjetPrivateKey != "" {
		mailClient = mailer.NewMailjet(
			cfg.MailjetPublicKey, cfg.MailjetPrivateKey,
			cfg.MailSenderName, cfg.MailSenderAddr,
		)
		slog.Info("mailjet configured", "sender", cfg.MailSenderAddr)
	} else {
		slog.Warn("mailjet not configured — outbound email disabled")
	}

	// Newsletter batch sender.
	sender := newsletter.NewSender(newsletterStore, subscriberStore, mailClient, cfg.BaseURL)

	// Billing provider client (optional).
	var billingClient *billing.Client
	if cfg.BillingAPIURL != "" {
		billingClient = billing.NewClient(cfg.BillingAPIURL, cfg.BillingAPIKey)
		slog.Info("billing provider configured", "url", cfg.BillingAPIURL)
	} else {
		slog.Warn("billing provider not configured — subscription refresh disabled")
	}

	// Scheduled-post promotion, runs every minute.
	sched := scheduler.New(postStore, feedCache)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:      sessionStore,
		SecureCookies: cfg.SecureCookies(),
		Health:        handlers.NewHealth(db),
		Auth:          handlers.NewAuth(sessionStore, accountStore),
		Posts:         handlers.NewPosts(postStore, taxonomyStore, engagementStore, gate, feedCache),
		Comments:      handlers.NewComments(commentStore, postStore),
		Engagement:    handlers.NewEngagement(engagementStore, postStore),
		Taxonomy:      handlers.NewTaxonomy(taxonomyStore),
		Newsletter:    handlers.NewNewsletter(subscriberStore, mailClient, cfg.BaseURL),
		Subs:          handlers.NewSubscription(subscriptionStore, billingClient),
		Media:         handlers.NewMedia(storageClient),
		Admin:         handlers.NewAdmin(accountStore, newsletterStore, sender),
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// newsletter send requests, which block on batch delivery.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
