package model

import (
	"strconv"
	"time"
)

// Strategy identifies how a page is rendered and cached.
type Strategy string

const (
	// StrategyStatic renders once into the snapshot at startup.
	StrategyStatic Strategy = "ssg"
	// StrategyRevalidate serves cached HTML refreshed on a timer.
	StrategyRevalidate Strategy = "isr"
	// StrategyDynamic renders on every request, nothing cached.
	StrategyDynamic Strategy = "ssr"
)

// CacheState describes how a cached page request was satisfied.
type CacheState string

const (
	CacheHit   CacheState = "HIT"
	CacheMiss  CacheState = "MISS"
	CacheStale CacheState = "STALE"
)

// Page is a rendered HTML page held in the page cache.
type Page struct {
	Path       string
	HTML       string
	Strategy   Strategy
	BuildID    string
	RenderedAt time.Time
}

// Age returns how long ago the page was rendered.
func (p *Page) Age(now time.Time) time.Duration {
	return now.Sub(p.RenderedAt)
}

// IsStale reports whether the page is older than the revalidate window.
func (p *Page) IsStale(now time.Time, window time.Duration) bool {
	return p.Age(now) > window
}

// CachedPage mirrors Page as stored in a Redis hash.
// String types only, for hash field compatibility.
type CachedPage struct {
	HTML       string `redis:"html"`
	Strategy   string `redis:"strategy"`
	BuildID    string `redis:"build_id"`
	RenderedAt string `redis:"rendered_at"` // Unix seconds
}

// ToPage converts the Redis representation back to the domain type.
func (c *CachedPage) ToPage(path string) *Page {
	page := &Page{
		Path:     path,
		HTML:     c.HTML,
		Strategy: Strategy(c.Strategy),
		BuildID:  c.BuildID,
	}

	if c.RenderedAt != "" {
		if ts, err := strconv.ParseInt(c.RenderedAt, 10, 64); err == nil {
			page.RenderedAt = time.Unix(ts, 0)
		}
	}

	return page
}

// ToCachedPage converts the page to its Redis hash representation.
func (p *Page) ToCachedPage() *CachedPage {
	return &CachedPage{
		HTML:       p.HTML,
		Strategy:   string(p.Strategy),
		BuildID:    p.BuildID,
		RenderedAt: strconv.FormatInt(p.RenderedAt.Unix(), 10),
	}
}
