// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// feed.go provides a Valkey-backed cache for public feed responses.
// The serialized JSON envelope for a feed page is stored in Valkey so
// repeat requests skip the DB queries entirely. Cache keys encode the
// full filter set, and any post mutation clears the whole feed space.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// feedKeyPrefix is the Valkey key prefix for cached feed pages.
	feedKeyPrefix = "feed:"

	// DefaultFeedTTL is how long a feed page stays cached.
	DefaultFeedTTL = 5 * time.Minute
)

// FeedCache manages cached feed responses in Valkey.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache creates a feed cache backed by the given Valkey client.
func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl == 0 {
		ttl = DefaultFeedTTL
	}
	return &FeedCache{client: client, ttl: ttl}
}

// FeedKey builds the cache key for a feed page from its filter set.
func FeedKey(categorySlug, tagSlug string, page int) string {
	return fmt.Sprintf("c=%s&t=%s&p=%d", categorySlug, tagSlug, page)
}

// Get retrieves a cached feed response. Returns nil, false on miss.
func (fc *FeedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := fc.client.Get(ctx, feedKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("feed cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("feed cache hit", "key", key)
	return val, true
}

// Set stores a serialized feed response with the configured TTL.
func (fc *FeedCache) Set(ctx context.Context, key string, payload []byte) {
	if err := fc.client.Set(ctx, feedKeyPrefix+key, payload, fc.ttl).Err(); err != nil {
		slog.Warn("feed cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached feed page by scanning for the prefix.
// Called after any post mutation, since any filter combination could be
// affected.
func (fc *FeedCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := fc.client.Scan(ctx, cursor, feedKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("feed cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := fc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("feed cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("feed cache cleared", "deleted", deleted)
	}
}
