// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Page cache metrics
	IncPageCacheHit()
	IncPageCacheMiss()
	IncPageStaleServe()

	// Rendering metrics
	IncPageRendered(strategy string) // strategy: "ssg", "isr", "ssr"
	ObserveRenderDuration(duration time.Duration)

	// Revalidation metrics
	IncRevalidation(status string) // status: "ok" or "error"

	// Snapshot metrics
	SetSnapshotPages(count int64)

	// Account metrics
	IncUserRegistered()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
