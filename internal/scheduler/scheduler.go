// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs the background promotion of scheduled posts.
// A cron job fires every minute, flips due scheduled posts to published,
// and clears the feed cache when anything changed.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"inkwell/internal/cache"
	"inkwell/internal/store"
)

// Scheduler owns the cron runner for post promotion.
type Scheduler struct {
	cron  *cron.Cron
	posts *store.PostStore
	feed  *cache.FeedCache
}

// New creates a scheduler. feed may be nil when caching is disabled.
func New(posts *store.PostStore, feed *cache.FeedCache) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		posts: posts,
		feed:  feed,
	}
}

// Start registers the promotion job and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.promoteDue); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("scheduler started", "job", "promote scheduled posts", "interval", "1m")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

// promoteDue publishes every scheduled post whose time has arrived.
func (s *Scheduler) promoteDue() {
	count, err := s.posts.PromoteDueScheduled(time.Now())
	if err != nil {
		slog.Error("scheduled post promotion failed", "error", err)
		return
	}
	if count == 0 {
		return
	}

	slog.Info("scheduled posts promoted", "count", count)
	if s.feed != nil {
		s.feed.InvalidateAll(context.Background())
	}
}
