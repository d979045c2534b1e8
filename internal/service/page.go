// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/renderlab/renderlab/internal/cache"
	"github.com/renderlab/renderlab/internal/metrics"
	"github.com/renderlab/renderlab/internal/model"
	"github.com/renderlab/renderlab/internal/render"
	"github.com/renderlab/renderlab/internal/repository"
)

// Service errors.
var (
	ErrPageNotFound = errors.New("page not found")
	ErrUnknownPath  = errors.New("path is not a renderable page")
)

// Canonical page paths per strategy.
const (
	PathStaticPosts      = "/ssg/posts"
	PathRevalidatedPosts = "/isr/posts"
	PathDynamicPosts     = "/ssr/posts"
)

// backgroundRenderTimeout bounds detached re-renders so they cannot
// outlive a wedged database call.
const backgroundRenderTimeout = 10 * time.Second

// PageService renders blog pages and manages their cached copies.
type PageService struct {
	repo               *repository.Repository
	cache              *cache.Cache
	renderer           *render.Renderer
	logger             *slog.Logger
	metrics            metrics.Recorder
	revalidateInterval time.Duration

	mu      sync.RWMutex
	buildID string
}

// NewPageService creates a new PageService.
func NewPageService(
	repo *repository.Repository,
	cacheClient *cache.Cache,
	renderer *render.Renderer,
	logger *slog.Logger,
	recorder metrics.Recorder,
	revalidateInterval time.Duration,
) *PageService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PageService{
		repo:               repo,
		cache:              cacheClient,
		renderer:           renderer,
		logger:             logger,
		metrics:            recorder,
		revalidateInterval: revalidateInterval,
	}
}

// Result is a served page plus how the cache satisfied it.
type Result struct {
	HTML  string
	State model.CacheState // empty for uncached strategies
}

// BuildID returns the ID of the current static snapshot.
func (s *PageService) BuildID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildID
}

// RevalidateInterval returns the configured revalidation window.
func (s *PageService) RevalidateInterval() time.Duration {
	return s.revalidateInterval
}

// ============================================================================
// Static snapshot pages (ssg)
// ============================================================================

// StaticPage serves a page from the snapshot. Pages absent from the
// snapshot - including posts created after the build - are not found.
func (s *PageService) StaticPage(ctx context.Context, path string) (*Result, error) {
	page, err := s.cache.GetPage(ctx, path)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncPageCacheMiss()
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("read snapshot page: %w", err)
	}

	s.metrics.IncPageCacheHit()
	return &Result{HTML: page.HTML, State: model.CacheHit}, nil
}

// ============================================================================
// Timed-revalidation pages (isr)
// ============================================================================

// RevalidatedListPage serves the cached listing page, refreshing it when
// it has outlived the revalidation window.
func (s *PageService) RevalidatedListPage(ctx context.Context) (*Result, error) {
	return s.serveRevalidated(ctx, PathRevalidatedPosts)
}

// RevalidatedDetailPage serves a cached post page, refreshing it when it
// has outlived the revalidation window.
func (s *PageService) RevalidatedDetailPage(ctx context.Context, id string) (*Result, error) {
	return s.serveRevalidated(ctx, PathRevalidatedPosts+"/"+id)
}

// serveRevalidated implements stale-while-revalidate: fresh entries are
// served as-is, stale entries are served and refreshed in the background,
// misses render synchronously and populate the cache.
func (s *PageService) serveRevalidated(ctx context.Context, path string) (*Result, error) {
	now := time.Now().UTC()

	page, err := s.cache.GetPage(ctx, path)
	switch {
	case err == nil && !page.IsStale(now, s.revalidateInterval):
		s.metrics.IncPageCacheHit()
		return &Result{HTML: page.HTML, State: model.CacheHit}, nil

	case err == nil:
		s.metrics.IncPageStaleServe()
		s.refreshInBackground(path)
		return &Result{HTML: page.HTML, State: model.CacheStale}, nil

	case errors.Is(err, cache.ErrCacheMiss):
		s.metrics.IncPageCacheMiss()
		html, err := s.renderPath(ctx, path)
		if err != nil {
			return nil, err
		}
		s.storeRevalidated(ctx, path, html)
		return &Result{HTML: html, State: model.CacheMiss}, nil

	default:
		// Cache trouble must not take the page down; render live.
		s.logger.Warn("page cache read failed", "path", path, "error", err)
		html, rerr := s.renderPath(ctx, path)
		if rerr != nil {
			return nil, rerr
		}
		return &Result{HTML: html, State: model.CacheMiss}, nil
	}
}

// refreshInBackground re-renders a stale page without blocking the
// request. The refresh marker keeps concurrent stale hits from rendering
// the same page twice.
func (s *PageService) refreshInBackground(path string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundRenderTimeout)
		defer cancel()

		locked, err := s.cache.TryLockRefresh(ctx, path)
		if err != nil {
			s.logger.Warn("refresh lock failed", "path", path, "error", err)
			return
		}
		if !locked {
			return
		}
		defer func() {
			if err := s.cache.UnlockRefresh(ctx, path); err != nil {
				s.logger.Warn("refresh unlock failed", "path", path, "error", err)
			}
		}()

		if err := s.RefreshPage(ctx, path); err != nil {
			s.logger.Error("background refresh failed", "path", path, "error", err)
		}
	}()
}

// RefreshPage re-renders a revalidated page and stores the fresh copy.
// A page whose post no longer exists is dropped from the cache.
func (s *PageService) RefreshPage(ctx context.Context, path string) error {
	html, err := s.renderPath(ctx, path)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return s.cache.DeletePage(ctx, path)
		}
		return err
	}

	s.storeRevalidated(ctx, path, html)
	return nil
}

func (s *PageService) storeRevalidated(ctx context.Context, path, html string) {
	page := &model.Page{
		Path:       path,
		HTML:       html,
		Strategy:   model.StrategyRevalidate,
		RenderedAt: time.Now().UTC(),
	}

	if err := s.cache.SetPage(ctx, page, cache.RevalidatedPageTTL); err != nil {
		s.logger.Warn("page cache write failed", "path", path, "error", err)
	}
}

// ============================================================================
// Per-request pages (ssr)
// ============================================================================

// DynamicListPage renders the listing page fresh from the database.
func (s *PageService) DynamicListPage(ctx context.Context) (*Result, error) {
	html, err := s.renderListPage(ctx, model.StrategyDynamic)
	if err != nil {
		return nil, err
	}
	return &Result{HTML: html}, nil
}

// DynamicDetailPage renders a post page fresh from the database.
func (s *PageService) DynamicDetailPage(ctx context.Context, id string) (*Result, error) {
	html, err := s.renderDetailPage(ctx, model.StrategyDynamic, id)
	if err != nil {
		return nil, err
	}
	return &Result{HTML: html}, nil
}

// ============================================================================
// Uncached site pages
// ============================================================================

// HomePage renders the landing page.
func (s *PageService) HomePage(_ context.Context) (*Result, error) {
	html, err := s.renderer.Home(render.HomeData{
		Meta:    render.Meta{Title: "Data fetching strategies", GeneratedAt: time.Now().UTC()},
		BuildID: s.BuildID(),
	})
	if err != nil {
		return nil, fmt.Errorf("render home page: %w", err)
	}
	return &Result{HTML: html}, nil
}

// ComparisonPage renders the strategy comparison page.
func (s *PageService) ComparisonPage(_ context.Context) (*Result, error) {
	html, err := s.renderer.Comparison(render.ComparisonData{
		Meta:               render.Meta{Title: "Strategy comparison", GeneratedAt: time.Now().UTC()},
		BuildID:            s.BuildID(),
		RevalidateInterval: s.revalidateInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("render comparison page: %w", err)
	}
	return &Result{HTML: html}, nil
}

// NotFoundPage returns the shared 404 page HTML.
func (s *PageService) NotFoundPage() string {
	html, err := s.renderer.NotFound()
	if err != nil {
		s.logger.Error("render 404 page failed", "error", err)
		return "404 page not found"
	}
	return html
}

// ErrorPage returns the shared 500 page HTML.
func (s *PageService) ErrorPage() string {
	html, err := s.renderer.ServerError()
	if err != nil {
		s.logger.Error("render 500 page failed", "error", err)
		return "internal server error"
	}
	return html
}

// ============================================================================
// Revalidation
// ============================================================================

// RevalidatePath drops the cached copy of a path. Snapshot pages are
// re-rendered immediately so the static group keeps serving; revalidated
// pages repopulate on their next request.
func (s *PageService) RevalidatePath(ctx context.Context, path string) error {
	if err := s.cache.DeletePage(ctx, path); err != nil {
		s.metrics.IncRevalidation("error")
		return fmt.Errorf("drop cached page: %w", err)
	}

	if strategy, _, err := parsePagePath(path); err == nil && strategy == model.StrategyStatic {
		if err := s.rebuildStaticPage(ctx, path); err != nil {
			s.metrics.IncRevalidation("error")
			return err
		}
	}

	s.metrics.IncRevalidation("ok")
	s.logger.Info("path revalidated", "path", path)
	return nil
}

// rebuildStaticPage renders a single snapshot page in place. A post that
// no longer exists simply drops out of the snapshot.
func (s *PageService) rebuildStaticPage(ctx context.Context, path string) error {
	html, err := s.renderPath(ctx, path)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil
		}
		return err
	}

	page := &model.Page{
		Path:       path,
		HTML:       html,
		Strategy:   model.StrategyStatic,
		BuildID:    s.BuildID(),
		RenderedAt: time.Now().UTC(),
	}

	if err := s.cache.SetPage(ctx, page, 0); err != nil {
		return fmt.Errorf("store snapshot page: %w", err)
	}

	return nil
}

// ============================================================================
// Rendering internals
// ============================================================================

// renderPath renders the page for any canonical cacheable path.
func (s *PageService) renderPath(ctx context.Context, path string) (string, error) {
	strategy, id, err := parsePagePath(path)
	if err != nil {
		return "", err
	}

	if id == "" {
		return s.renderListPage(ctx, strategy)
	}
	return s.renderDetailPage(ctx, strategy, id)
}

func (s *PageService) renderListPage(ctx context.Context, strategy model.Strategy) (string, error) {
	start := time.Now()

	posts, err := s.repo.ListPublishedPosts(ctx)
	if err != nil {
		return "", fmt.Errorf("load published posts: %w", err)
	}

	html, err := s.renderer.PostList(render.ListData{
		Meta:  render.Meta{Title: "Posts", Strategy: strategy, GeneratedAt: time.Now().UTC()},
		Posts: posts,
	})
	if err != nil {
		return "", fmt.Errorf("render listing page: %w", err)
	}

	s.metrics.IncPageRendered(string(strategy))
	s.metrics.ObserveRenderDuration(time.Since(start))
	return html, nil
}

func (s *PageService) renderDetailPage(ctx context.Context, strategy model.Strategy, id string) (string, error) {
	start := time.Now()

	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return "", ErrPageNotFound
		}
		return "", fmt.Errorf("load post: %w", err)
	}

	html, err := s.renderer.PostDetail(render.DetailData{
		Meta: render.Meta{Title: post.Title, Strategy: strategy, GeneratedAt: time.Now().UTC()},
		Post: post,
	})
	if err != nil {
		return "", fmt.Errorf("render post page: %w", err)
	}

	s.metrics.IncPageRendered(string(strategy))
	s.metrics.ObserveRenderDuration(time.Since(start))
	return html, nil
}

// parsePagePath splits a canonical page path into its strategy and, for
// detail pages, the post ID. Only cacheable groups parse; ssr pages are
// never cached so they are not addressable here.
func parsePagePath(path string) (model.Strategy, string, error) {
	switch {
	case path == PathStaticPosts:
		return model.StrategyStatic, "", nil
	case path == PathRevalidatedPosts:
		return model.StrategyRevalidate, "", nil
	case strings.HasPrefix(path, PathStaticPosts+"/"):
		return detailPath(model.StrategyStatic, strings.TrimPrefix(path, PathStaticPosts+"/"))
	case strings.HasPrefix(path, PathRevalidatedPosts+"/"):
		return detailPath(model.StrategyRevalidate, strings.TrimPrefix(path, PathRevalidatedPosts+"/"))
	default:
		return "", "", ErrUnknownPath
	}
}

func detailPath(strategy model.Strategy, id string) (model.Strategy, string, error) {
	if id == "" || strings.Contains(id, "/") {
		return "", "", ErrUnknownPath
	}
	return strategy, id, nil
}
