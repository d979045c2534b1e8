package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPageCacheHit is a no-op.
func (n *NoopRecorder) IncPageCacheHit() {}

// IncPageCacheMiss is a no-op.
func (n *NoopRecorder) IncPageCacheMiss() {}

// IncPageStaleServe is a no-op.
func (n *NoopRecorder) IncPageStaleServe() {}

// IncPageRendered is a no-op.
func (n *NoopRecorder) IncPageRendered(strategy string) {}

// ObserveRenderDuration is a no-op.
func (n *NoopRecorder) ObserveRenderDuration(duration time.Duration) {}

// IncRevalidation is a no-op.
func (n *NoopRecorder) IncRevalidation(status string) {}

// SetSnapshotPages is a no-op.
func (n *NoopRecorder) SetSnapshotPages(count int64) {}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}
