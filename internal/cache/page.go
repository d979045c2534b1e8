package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/renderlab/renderlab/internal/model"
)

// Cache key prefixes and TTLs.
const (
	pageKeyPrefix    = "page:"
	refreshKeySuffix = ":refresh"

	// RevalidatedPageTTL bounds how long a timed-revalidation page entry
	// survives without any traffic. Staleness within that window is decided
	// from the rendered_at field, not the key TTL.
	RevalidatedPageTTL = 24 * time.Hour

	// RefreshMarkerTTL bounds a background re-render marker so a crashed
	// refresh cannot wedge the page in a stale state.
	RefreshMarkerTTL = 30 * time.Second
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// pageKey builds the Redis key for a page path.
func pageKey(path string) string {
	return pageKeyPrefix + path
}

// PathFromPageKey extracts the page path from a Redis page key.
func PathFromPageKey(key string) string {
	if strings.HasPrefix(key, pageKeyPrefix) {
		return key[len(pageKeyPrefix):]
	}
	return ""
}

// GetPage retrieves a rendered page from cache by path.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetPage(ctx context.Context, path string) (*model.Page, error) {
	result, err := c.client.HGetAll(ctx, pageKey(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedPage{
		HTML:       result["html"],
		Strategy:   result["strategy"],
		BuildID:    result["build_id"],
		RenderedAt: result["rendered_at"],
	}

	return cached.ToPage(path), nil
}

// SetPage stores a rendered page. A zero ttl keeps the entry until it is
// explicitly revalidated or overwritten; static snapshot pages use that.
func (c *Cache) SetPage(ctx context.Context, page *model.Page, ttl time.Duration) error {
	key := pageKey(page.Path)
	cached := page.ToCachedPage()

	fields := map[string]any{
		"html":        cached.HTML,
		"strategy":    cached.Strategy,
		"rendered_at": cached.RenderedAt,
	}
	if cached.BuildID != "" {
		fields["build_id"] = cached.BuildID
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	} else {
		pipe.Persist(ctx, key)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}

	return nil
}

// DeletePage removes a page and its refresh marker from cache.
func (c *Cache) DeletePage(ctx context.Context, path string) error {
	key := pageKey(path)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+refreshKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete page from cache: %w", err)
	}

	return nil
}

// TryLockRefresh claims the background re-render for a page path.
// Returns false when another refresh is already in flight.
func (c *Cache) TryLockRefresh(ctx context.Context, path string) (bool, error) {
	key := pageKey(path) + refreshKeySuffix

	ok, err := c.client.SetNX(ctx, key, "1", RefreshMarkerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock refresh: %w", err)
	}

	return ok, nil
}

// UnlockRefresh releases the background re-render marker for a page path.
func (c *Cache) UnlockRefresh(ctx context.Context, path string) error {
	key := pageKey(path) + refreshKeySuffix

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to unlock refresh: %w", err)
	}

	return nil
}

// ScanPageKeys returns all page keys whose path matches the given prefix.
// Used by the background refresher to find timed-revalidation pages.
func (c *Cache) ScanPageKeys(ctx context.Context, pathPrefix string) ([]string, error) {
	var keys []string
	var cursor uint64

	pattern := pageKeyPrefix + pathPrefix + "*"

	for {
		var scanKeys []string
		var err error

		scanKeys, cursor, err = c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan page keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	// Refresh markers share the prefix; drop them.
	pages := keys[:0]
	for _, key := range keys {
		if !strings.HasSuffix(key, refreshKeySuffix) {
			pages = append(pages, key)
		}
	}

	return pages, nil
}
