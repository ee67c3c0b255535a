// Package metrics provides the MetricsRecorder interface and a noop implementation.
package metrics

import (
	"sync"
	"time"
)

// MetricsRecorder records store activity. The store argument is the logical
// resource name the store is bound to.
type MetricsRecorder interface {
	RecordHit(store string)
	RecordMiss(store string)
	RecordLatency(store, op string, d time.Duration)
	RecordError(store, op string)
	RecordCorrupt(store string)
	RecordPending(store string, count int64)
}

// Noop is a MetricsRecorder that discards all data.
type Noop struct{}

func (Noop) RecordHit(store string)                          {}
func (Noop) RecordMiss(store string)                         {}
func (Noop) RecordLatency(store, op string, d time.Duration) {}
func (Noop) RecordError(store, op string)                    {}
func (Noop) RecordCorrupt(store string)                      {}
func (Noop) RecordPending(store string, count int64)         {}

// Counter is an in-memory MetricsRecorder that totals events across all
// stores. Latencies are summed per operation.
type Counter struct {
	mu      sync.Mutex
	hits    int64
	misses  int64
	corrupt int64
	errors  map[string]int64
	latency map[string]time.Duration
	pending map[string]int64
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		errors:  make(map[string]int64),
		latency: make(map[string]time.Duration),
		pending: make(map[string]int64),
	}
}

func (c *Counter) RecordHit(string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Counter) RecordMiss(string) {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *Counter) RecordLatency(_, op string, d time.Duration) {
	c.mu.Lock()
	c.latency[op] += d
	c.mu.Unlock()
}

func (c *Counter) RecordError(_, op string) {
	c.mu.Lock()
	c.errors[op]++
	c.mu.Unlock()
}

func (c *Counter) RecordCorrupt(string) {
	c.mu.Lock()
	c.corrupt++
	c.mu.Unlock()
}

func (c *Counter) RecordPending(store string, count int64) {
	c.mu.Lock()
	c.pending[store] = count
	c.mu.Unlock()
}

// Snapshot is a point-in-time copy of a Counter.
type Snapshot struct {
	Hits    int64
	Misses  int64
	Corrupt int64
	Errors  map[string]int64
	Latency map[string]time.Duration
	Pending map[string]int64
}

// Snapshot copies the current totals.
func (c *Counter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Hits:    c.hits,
		Misses:  c.misses,
		Corrupt: c.corrupt,
		Errors:  make(map[string]int64, len(c.errors)),
		Latency: make(map[string]time.Duration, len(c.latency)),
		Pending: make(map[string]int64, len(c.pending)),
	}
	for k, v := range c.errors {
		s.Errors[k] = v
	}
	for k, v := range c.latency {
		s.Latency[k] = v
	}
	for k, v := range c.pending {
		s.Pending[k] = v
	}
	return s
}
