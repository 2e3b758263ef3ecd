// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. Routes are grouped by the role they require; everything
// under /api shares CSRF protection and session loading.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"
)

// Deps collects everything the route tree needs.
type Deps struct {
	Sessions      *session.Store
	SecureCookies bool

	Health     *handlers.Health
	Auth       *handlers.Auth
	Posts      *handlers.Posts
	Comments   *handlers.Comments
	Engagement *handlers.Engagement
	Taxonomy   *handlers.Taxonomy
	Newsletter *handlers.Newsletter
	Subs       *handlers.Subscription
	Media      *handlers.Media
	Admin      *handlers.Admin
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", d.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))

		// Auth — login/register are rate limited against brute force.
		r.Route("/auth", func(r chi.Router) {
			limiter := middleware.NewRateLimiter(10, time.Minute)
			r.Group(func(r chi.Router) {
				r.Use(limiter.Middleware)
				r.Post("/register", d.Auth.Register)
				r.Post("/login", d.Auth.Login)
			})
			r.Post("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", d.Auth.Me)
				r.Post("/2fa/setup", d.Auth.TwoFASetup)
				r.Post("/2fa/verify", d.Auth.TwoFAVerify)
			})
		})

		// Posts — the feed and single reads are public; visibility and
		// paywall rules are resolved per viewer inside the handlers.
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.Feed)
			r.Get("/{slug}", d.Posts.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAuthor))
				r.Post("/", d.Posts.Create)
			})

			// Edit rights are per post (author or editor+), checked in
			// the handler.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Put("/{id}", d.Posts.Update)
				r.Delete("/{id}", d.Posts.Delete)
			})

			// Comments and engagement hang off a post.
			r.Get("/{id}/comments", d.Comments.List)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/{id}/comments", d.Comments.Create)
				r.Post("/{id}/like", d.Engagement.ToggleLike)
				r.Post("/{id}/bookmark", d.Engagement.ToggleBookmark)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Put("/comments/{id}", d.Comments.Edit)
			r.Delete("/comments/{id}", d.Comments.Delete)
			r.Get("/bookmarks", d.Engagement.Bookmarks)
		})

		// Taxonomy listings.
		r.Get("/categories", d.Taxonomy.Categories)
		r.Get("/tags", d.Taxonomy.Tags)

		// Newsletter — public endpoints driven by emailed tokens.
		r.Route("/newsletter", func(r chi.Router) {
			r.Post("/subscribe", d.Newsletter.Subscribe)
			r.Get("/verify", d.Newsletter.Verify)
			r.Post("/unsubscribe", d.Newsletter.Unsubscribe)
		})

		// Subscription status and billing refresh.
		r.Route("/subscription", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", d.Subs.Get)
			r.Post("/refresh", d.Subs.Refresh)
		})

		// Media uploads — authors and up; deletion is editor and up.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAuthor))
			r.Post("/media", d.Media.Upload)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleEditor))
			r.Delete("/media", d.Media.Remove)
		})

		// Admin area — admins only, with completed 2FA.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Use(middleware.Require2FA)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", d.Admin.AccountsList)
				r.Put("/{id}/role", d.Admin.SetRole)
				r.Put("/{id}/suspend", d.Admin.SetSuspended)
			})

			r.Route("/newsletters", func(r chi.Router) {
				r.Get("/", d.Admin.NewslettersList)
				r.Post("/", d.Admin.NewsletterCreate)
				r.Put("/{id}", d.Admin.NewsletterUpdate)
				r.Post("/{id}/send", d.Admin.NewsletterSend)
			})
		})
	})

	return r
}
