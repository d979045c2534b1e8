package service

import (
	"errors"
	"testing"

	"github.com/renderlab/renderlab/internal/model"
)

func TestParsePagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		path         string
		wantStrategy model.Strategy
		wantID       string
		wantErr      bool
	}{
		{"static listing", "/ssg/posts", model.StrategyStatic, "", false},
		{"revalidated listing", "/isr/posts", model.StrategyRevalidate, "", false},
		{"static detail", "/ssg/posts/abc-123", model.StrategyStatic, "abc-123", false},
		{"revalidated detail", "/isr/posts/abc-123", model.StrategyRevalidate, "abc-123", false},
		{"dynamic pages are not cacheable", "/ssr/posts", "", "", true},
		{"trailing slash", "/ssg/posts/", "", "", true},
		{"nested path", "/ssg/posts/a/b", "", "", true},
		{"home", "/", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strategy, id, err := parsePagePath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPath) {
					t.Errorf("expected ErrUnknownPath, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePagePath(%q) failed: %v", tt.path, err)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("strategy = %q, want %q", strategy, tt.wantStrategy)
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
		})
	}
}
