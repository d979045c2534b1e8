package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	PageCacheHits         uint64
	PageCacheMisses       uint64
	PageStaleServes       uint64
	PagesRenderedStatic   uint64
	PagesRenderedTimed    uint64
	PagesRenderedDynamic  uint64
	RenderDurationCount   uint64
	RenderDurationTotalNs int64
	RevalidationsOK       uint64
	RevalidationsFailed   uint64
	SnapshotPages         int64
	UsersRegistered       uint64
}

// InMemoryRecorder stores metrics in memory behind atomic counters.
type InMemoryRecorder struct {
	pageCacheHits         uint64
	pageCacheMisses       uint64
	pageStaleServes       uint64
	pagesRenderedStatic   uint64
	pagesRenderedTimed    uint64
	pagesRenderedDynamic  uint64
	renderDurationCount   uint64
	renderDurationTotalNs int64
	revalidationsOK       uint64
	revalidationsFailed   uint64
	snapshotPages         int64
	usersRegistered       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		PageCacheHits:         atomic.LoadUint64(&m.pageCacheHits),
		PageCacheMisses:       atomic.LoadUint64(&m.pageCacheMisses),
		PageStaleServes:       atomic.LoadUint64(&m.pageStaleServes),
		PagesRenderedStatic:   atomic.LoadUint64(&m.pagesRenderedStatic),
		PagesRenderedTimed:    atomic.LoadUint64(&m.pagesRenderedTimed),
		PagesRenderedDynamic:  atomic.LoadUint64(&m.pagesRenderedDynamic),
		RenderDurationCount:   atomic.LoadUint64(&m.renderDurationCount),
		RenderDurationTotalNs: atomic.LoadInt64(&m.renderDurationTotalNs),
		RevalidationsOK:       atomic.LoadUint64(&m.revalidationsOK),
		RevalidationsFailed:   atomic.LoadUint64(&m.revalidationsFailed),
		SnapshotPages:         atomic.LoadInt64(&m.snapshotPages),
		UsersRegistered:       atomic.LoadUint64(&m.usersRegistered),
	}
}

// IncPageCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncPageCacheHit() {
	atomic.AddUint64(&m.pageCacheHits, 1)
}

// IncPageCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncPageCacheMiss() {
	atomic.AddUint64(&m.pageCacheMisses, 1)
}

// IncPageStaleServe increments the stale serve counter.
func (m *InMemoryRecorder) IncPageStaleServe() {
	atomic.AddUint64(&m.pageStaleServes, 1)
}

// IncPageRendered increments the render counter for a strategy.
func (m *InMemoryRecorder) IncPageRendered(strategy string) {
	switch strategy {
	case "ssg":
		atomic.AddUint64(&m.pagesRenderedStatic, 1)
	case "isr":
		atomic.AddUint64(&m.pagesRenderedTimed, 1)
	case "ssr":
		atomic.AddUint64(&m.pagesRenderedDynamic, 1)
	}
}

// ObserveRenderDuration records a page render duration.
func (m *InMemoryRecorder) ObserveRenderDuration(duration time.Duration) {
	atomic.AddUint64(&m.renderDurationCount, 1)
	atomic.AddInt64(&m.renderDurationTotalNs, duration.Nanoseconds())
}

// IncRevalidation increments the revalidation counter for a status.
func (m *InMemoryRecorder) IncRevalidation(status string) {
	if status == "ok" {
		atomic.AddUint64(&m.revalidationsOK, 1)
		return
	}
	atomic.AddUint64(&m.revalidationsFailed, 1)
}

// SetSnapshotPages records the size of the current static snapshot.
func (m *InMemoryRecorder) SetSnapshotPages(count int64) {
	atomic.StoreInt64(&m.snapshotPages, count)
}

// IncUserRegistered increments the registered users counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}
