package model

import (
	"testing"
	"time"
)

func TestPage_IsStale(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	window := 60 * time.Second

	tests := []struct {
		name       string
		renderedAt time.Time
		want       bool
	}{
		{"fresh", now.Add(-10 * time.Second), false},
		{"on the boundary", now.Add(-window), false},
		{"just past", now.Add(-window - time.Second), true},
		{"long stale", now.Add(-time.Hour), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := &Page{Path: "/isr/posts", RenderedAt: tt.renderedAt}
			if got := page.IsStale(now, window); got != tt.want {
				t.Errorf("IsStale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPage_CachedRoundTrip(t *testing.T) {
	t.Parallel()

	renderedAt := time.Unix(1724580000, 0)
	page := &Page{
		Path:       "/ssg/posts",
		HTML:       "<html><body>posts</body></html>",
		Strategy:   StrategyStatic,
		BuildID:    "01J5ZX0000000000000000000",
		RenderedAt: renderedAt,
	}

	restored := page.ToCachedPage().ToPage(page.Path)

	if restored.HTML != page.HTML {
		t.Errorf("HTML mismatch: got %q", restored.HTML)
	}
	if restored.Strategy != StrategyStatic {
		t.Errorf("Strategy mismatch: got %q", restored.Strategy)
	}
	if restored.BuildID != page.BuildID {
		t.Errorf("BuildID mismatch: got %q", restored.BuildID)
	}
	if !restored.RenderedAt.Equal(renderedAt) {
		t.Errorf("RenderedAt mismatch: got %v, want %v", restored.RenderedAt, renderedAt)
	}
}

func TestCachedPage_EmptyRenderedAt(t *testing.T) {
	t.Parallel()

	cached := &CachedPage{HTML: "x", Strategy: "ssr"}
	page := cached.ToPage("/ssr/posts")

	if !page.RenderedAt.IsZero() {
		t.Errorf("expected zero RenderedAt, got %v", page.RenderedAt)
	}
}

func TestPost_IsPublished(t *testing.T) {
	t.Parallel()

	published := &Post{Published: PostPublished}
	if !published.IsPublished() {
		t.Error("published = 1 should report published")
	}

	draft := &Post{Published: PostDraft}
	if draft.IsPublished() {
		t.Error("published = 0 should not report published")
	}
}
