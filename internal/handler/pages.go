package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/renderlab/renderlab/internal/model"
	"github.com/renderlab/renderlab/internal/service"
)

// Response headers describing how a page was served.
const (
	StrategyHeader = "X-Render-Strategy"
	CacheHeader    = "X-Cache"
)

// staticCacheControl is the browser-facing policy for snapshot pages.
// The snapshot itself never expires server-side.
const staticCacheControl = "public, max-age=300"

// PageServer is the page-serving surface the handlers need.
type PageServer interface {
	StaticPage(ctx context.Context, path string) (*service.Result, error)
	RevalidatedListPage(ctx context.Context) (*service.Result, error)
	RevalidatedDetailPage(ctx context.Context, id string) (*service.Result, error)
	DynamicListPage(ctx context.Context) (*service.Result, error)
	DynamicDetailPage(ctx context.Context, id string) (*service.Result, error)
	HomePage(ctx context.Context) (*service.Result, error)
	ComparisonPage(ctx context.Context) (*service.Result, error)
	NotFoundPage() string
	ErrorPage() string
	RevalidateInterval() time.Duration
}

// PageHandler serves the HTML pages for every rendering strategy.
type PageHandler struct {
	svc    PageServer
	logger *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(svc PageServer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		svc:    svc,
		logger: logger,
	}
}

// Home handles GET /.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.HomePage(r.Context())
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	h.writePage(w, "", result)
}

// Comparison handles GET /comparison.
func (h *PageHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ComparisonPage(r.Context())
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	h.writePage(w, "", result)
}

// StaticList handles GET /ssg/posts.
func (h *PageHandler) StaticList(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.StaticPage(r.Context(), service.PathStaticPosts)
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", staticCacheControl)
	h.writePage(w, model.StrategyStatic, result)
}

// StaticDetail handles GET /ssg/posts/{id}.
func (h *PageHandler) StaticDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.svc.StaticPage(r.Context(), service.PathStaticPosts+"/"+id)
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", staticCacheControl)
	h.writePage(w, model.StrategyStatic, result)
}

// RevalidatedList handles GET /isr/posts.
func (h *PageHandler) RevalidatedList(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RevalidatedListPage(r.Context())
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", h.revalidatedCacheControl())
	h.writePage(w, model.StrategyRevalidate, result)
}

// RevalidatedDetail handles GET /isr/posts/{id}.
func (h *PageHandler) RevalidatedDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.svc.RevalidatedDetailPage(r.Context(), id)
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", h.revalidatedCacheControl())
	h.writePage(w, model.StrategyRevalidate, result)
}

// DynamicList handles GET /ssr/posts.
func (h *PageHandler) DynamicList(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DynamicListPage(r.Context())
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.writePage(w, model.StrategyDynamic, result)
}

// DynamicDetail handles GET /ssr/posts/{id}.
func (h *PageHandler) DynamicDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.svc.DynamicDetailPage(r.Context(), id)
	if err != nil {
		h.servePageError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.writePage(w, model.StrategyDynamic, result)
}

// NotFoundPage renders the shared HTML 404 for unmatched page routes.
func (h *PageHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusNotFound, h.svc.NotFoundPage())
}

// revalidatedCacheControl derives the header from the revalidation window.
func (h *PageHandler) revalidatedCacheControl() string {
	window := int(h.svc.RevalidateInterval().Seconds())
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", window, window*5)
}

// writePage writes a rendered page with its strategy headers.
func (h *PageHandler) writePage(w http.ResponseWriter, strategy model.Strategy, result *service.Result) {
	if strategy != "" {
		w.Header().Set(StrategyHeader, string(strategy))
	}
	if result.State != "" {
		w.Header().Set(CacheHeader, string(result.State))
	}
	writeHTML(w, http.StatusOK, result.HTML)
}

// servePageError maps service errors to the shared HTML error pages.
func (h *PageHandler) servePageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrPageNotFound) {
		writeHTML(w, http.StatusNotFound, h.svc.NotFoundPage())
		return
	}

	// Database and render failures surface as the generic 500 page.
	h.logger.Error("page render failed",
		"path", r.URL.Path,
		"error", err,
	)
	writeHTML(w, http.StatusInternalServerError, h.svc.ErrorPage())
}

// writeHTML writes an HTML response with the given status code.
func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}
