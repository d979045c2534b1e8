package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/renderlab/renderlab/internal/cache"
)

// Refresher re-renders stale timed-revalidation pages on an interval so
// pages stay warm even without traffic.
type Refresher struct {
	svc      *PageService
	logger   *slog.Logger
	interval time.Duration
	started  bool
}

// NewRefresher creates a refresher that sweeps once per revalidation window.
func NewRefresher(svc *PageService, logger *slog.Logger) *Refresher {
	return &Refresher{
		svc:      svc,
		logger:   logger.With("component", "page.refresher"),
		interval: svc.RevalidateInterval(),
	}
}

// Run starts the refresher loop. Blocks until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if r.started {
		return errors.New("refresher already started")
	}
	r.started = true

	r.logger.Info("refresher started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return nil
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep refreshes every stale page in the timed-revalidation group.
func (r *Refresher) sweep(ctx context.Context) {
	keys, err := r.svc.cache.ScanPageKeys(ctx, PathRevalidatedPosts)
	if err != nil {
		r.logger.Error("scan pages failed", "error", err)
		return
	}

	now := time.Now().UTC()
	refreshed := 0

	for _, key := range keys {
		path := cache.PathFromPageKey(key)
		if path == "" {
			continue
		}

		page, err := r.svc.cache.GetPage(ctx, path)
		if err != nil {
			if !errors.Is(err, cache.ErrCacheMiss) {
				r.logger.Warn("read page failed", "path", path, "error", err)
			}
			continue
		}
		if !page.IsStale(now, r.interval) {
			continue
		}

		locked, err := r.svc.cache.TryLockRefresh(ctx, path)
		if err != nil || !locked {
			continue
		}

		if err := r.svc.RefreshPage(ctx, path); err != nil {
			r.logger.Error("refresh failed", "path", path, "error", err)
		} else {
			refreshed++
		}

		if err := r.svc.cache.UnlockRefresh(ctx, path); err != nil {
			r.logger.Warn("refresh unlock failed", "path", path, "error", err)
		}
	}

	if refreshed > 0 {
		r.logger.Info("sweep complete", "scanned", len(keys), "refreshed", refreshed)
	}
}
