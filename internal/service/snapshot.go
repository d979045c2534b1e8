package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/renderlab/renderlab/internal/model"
	"github.com/renderlab/renderlab/internal/render"
)

// BuildSnapshot renders every static page into the cache under a fresh
// build ID: the listing page plus one detail page per published post.
// This is the "build step" of the static group, run at startup and on
// demand. Returns the number of pages in the snapshot.
func (s *PageService) BuildSnapshot(ctx context.Context) (int, error) {
	buildID := ulid.Make().String()
	start := time.Now()

	posts, err := s.repo.ListPublishedPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load posts for snapshot: %w", err)
	}

	renderedAt := time.Now().UTC()

	listHTML, err := s.renderer.PostList(render.ListData{
		Meta:  render.Meta{Title: "Posts", Strategy: model.StrategyStatic, GeneratedAt: renderedAt},
		Posts: posts,
	})
	if err != nil {
		return 0, fmt.Errorf("render snapshot listing: %w", err)
	}

	pages := []*model.Page{{
		Path:       PathStaticPosts,
		HTML:       listHTML,
		Strategy:   model.StrategyStatic,
		BuildID:    buildID,
		RenderedAt: renderedAt,
	}}

	for _, post := range posts {
		detailHTML, err := s.renderer.PostDetail(render.DetailData{
			Meta: render.Meta{Title: post.Title, Strategy: model.StrategyStatic, GeneratedAt: renderedAt},
			Post: post,
		})
		if err != nil {
			return 0, fmt.Errorf("render snapshot page for post %s: %w", post.ID, err)
		}

		pages = append(pages, &model.Page{
			Path:       PathStaticPosts + "/" + post.ID,
			HTML:       detailHTML,
			Strategy:   model.StrategyStatic,
			BuildID:    buildID,
			RenderedAt: renderedAt,
		})
	}

	// Snapshot pages never expire; only a rebuild or an explicit
	// revalidation replaces them.
	for _, page := range pages {
		if err := s.cache.SetPage(ctx, page, 0); err != nil {
			return 0, fmt.Errorf("store snapshot page %s: %w", page.Path, err)
		}
	}

	s.mu.Lock()
	s.buildID = buildID
	s.mu.Unlock()

	s.metrics.SetSnapshotPages(int64(len(pages)))
	s.metrics.IncPageRendered(string(model.StrategyStatic))
	s.logger.Info("static snapshot built",
		"build_id", buildID,
		"pages", len(pages),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return len(pages), nil
}
