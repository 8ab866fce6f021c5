package status

import "sync/atomic"

// Metric keys written by the producer and read by the dashboard
const (
	KeyProducerCycles       = "producer.cycles"
	KeyProducerPublished    = "producer.published"
	KeyProducerFailures     = "producer.failures"
	KeyProducerConsecutive  = "producer.consecutive_failures"
	KeyProducerLastError    = "producer.last_error"
	KeyProducerLastSource   = "producer.source"
	KeyProducerFetchSeconds = "producer.fetch_seconds"
	KeyProducerRunning      = "producer.running"
	KeyCacheHits            = "cache.hits"
	KeyCacheMisses          = "cache.misses"
	KeyCacheErrors          = "cache.errors"
	KeyRenderFrames         = "render.frames"
	KeyRenderDropped        = "render.dropped_snapshots"
	KeyRenderSkipped        = "render.skipped_frames"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// LoadInt reads an integer metric, 0 when never registered
func (r *Registry) LoadInt(key string) int64 {
	if p, ok := r.Ints.Lookup(key); ok {
		return p.Load()
	}
	return 0
}

// LoadString reads a string metric, empty when never registered
func (r *Registry) LoadString(key string) string {
	if p, ok := r.Strings.Lookup(key); ok {
		return p.Load()
	}
	return ""
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Dump copies every metric into a plain map keyed by metric name
func (r *Registry) Dump() map[string]any {
	out := make(map[string]any, r.TotalCount())
	r.Bools.Range(func(k string, p *atomic.Bool) { out[k] = p.Load() })
	r.Ints.Range(func(k string, p *atomic.Int64) { out[k] = p.Load() })
	r.Floats.Range(func(k string, p *AtomicFloat) { out[k] = p.Get() })
	r.Strings.Range(func(k string, p *AtomicString) { out[k] = p.Load() })
	return out
}
