package handler

import (
	"fmt"
	"net/http"

	"github.com/renderlab/renderlab/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "renderlab_page_cache_hits_total %d\n", snap.PageCacheHits)
	writeMetric(w, "renderlab_page_cache_misses_total %d\n", snap.PageCacheMisses)
	writeMetric(w, "renderlab_page_stale_serves_total %d\n", snap.PageStaleServes)

	writeMetric(w, "renderlab_pages_rendered_total{strategy=\"ssg\"} %d\n", snap.PagesRenderedStatic)
	writeMetric(w, "renderlab_pages_rendered_total{strategy=\"isr\"} %d\n", snap.PagesRenderedTimed)
	writeMetric(w, "renderlab_pages_rendered_total{strategy=\"ssr\"} %d\n", snap.PagesRenderedDynamic)

	writeMetric(w, "renderlab_render_duration_seconds_count %d\n", snap.RenderDurationCount)
	writeMetric(w, "renderlab_render_duration_seconds_sum %.6f\n", float64(snap.RenderDurationTotalNs)/1e9)

	writeMetric(w, "renderlab_revalidations_total{status=\"ok\"} %d\n", snap.RevalidationsOK)
	writeMetric(w, "renderlab_revalidations_total{status=\"error\"} %d\n", snap.RevalidationsFailed)

	writeMetric(w, "renderlab_snapshot_pages %d\n", snap.SnapshotPages)
	writeMetric(w, "renderlab_users_registered_total %d\n", snap.UsersRegistered)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
