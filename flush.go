// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// flush.go — write-behind flusher: one background goroutine per store that
// persists the latest accepted write, retrying failed attempts.

package stash

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AndrewDonelson/stash/internal/metrics"
)

// pending is a write accepted into the cache but not yet on disk.
type pending[T any] struct {
	gen    uint64
	value  T
	absent bool
}

// flusher holds at most one pending write. A newer write replaces an older
// one that has not started, so the disk converges to the last write in the
// order the cache saw them.
type flusher[T any] struct {
	name       string
	persist    func(pending[T]) error
	logger     Logger
	metrics    metrics.MetricsRecorder
	maxRetry   int
	retryDelay time.Duration

	mu      sync.Mutex
	next    *pending[T]
	busy    bool
	idle    chan struct{} // closed while nothing is pending or running
	lastErr error

	wake   chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newFlusher[T any](name string, persist func(pending[T]) error, cfg *Config) *flusher[T] {
	idle := make(chan struct{})
	close(idle)
	return &flusher[T]{
		name:       name,
		persist:    persist,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		maxRetry:   cfg.WriteBehindMaxRetry,
		retryDelay: cfg.WriteBehindRetryDelay,
		idle:       idle,
		wake:       make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
	}
}

func (f *flusher[T]) start() {
	f.wg.Add(1)
	go f.loop()
}

// stop drains the pending write and stops the goroutine.
func (f *flusher[T]) stop() error {
	close(f.stopCh)
	f.wg.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.lastErr
	f.lastErr = nil
	return err
}

func (f *flusher[T]) enqueue(op pending[T]) {
	f.mu.Lock()
	f.next = &op
	f.markBusy()
	f.mu.Unlock()
	f.metrics.RecordPending(f.name, 1)
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// cancel drops a pending write that has not started.
func (f *flusher[T]) cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next == nil {
		return
	}
	f.next = nil
	f.metrics.RecordPending(f.name, 0)
	if !f.busy {
		f.markIdle()
	}
}

// pendingCount is 1 while a write is queued or running.
func (f *flusher[T]) pendingCount() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next != nil || f.busy {
		return 1
	}
	return 0
}

// wait blocks until nothing is pending, then returns and clears the last
// exhausted-retry error.
func (f *flusher[T]) wait(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()
	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.lastErr
	f.lastErr = nil
	return err
}

// markBusy and markIdle must be called with mu held.
func (f *flusher[T]) markBusy() {
	select {
	case <-f.idle:
		f.idle = make(chan struct{})
	default:
	}
}

func (f *flusher[T]) markIdle() {
	select {
	case <-f.idle:
	default:
		close(f.idle)
	}
}

func (f *flusher[T]) loop() {
	defer f.wg.Done()
	for {
		select {
		case <-f.stopCh:
			f.drain()
			return
		case <-f.wake:
			f.drain()
		}
	}
}

func (f *flusher[T]) drain() {
	for {
		f.mu.Lock()
		op := f.next
		if op == nil {
			f.busy = false
			f.markIdle()
			f.mu.Unlock()
			f.metrics.RecordPending(f.name, 0)
			return
		}
		f.next = nil
		f.busy = true
		f.mu.Unlock()

		f.run(*op)
	}
}

func (f *flusher[T]) superseded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next != nil
}

func (f *flusher[T]) run(op pending[T]) {
	var err error
	for attempt := 0; ; attempt++ {
		if err = f.persist(op); err == nil {
			return
		}
		if attempt >= f.maxRetry || f.superseded() {
			break
		}
		f.logger.Warn("stash: write-behind attempt failed", "store", f.name, "attempt", attempt+1, "err", err)
		select {
		case <-time.After(f.retryDelay):
		case <-f.stopCh:
		}
	}
	if f.superseded() {
		return
	}
	f.logger.Error("stash: write-behind max retries exceeded", "store", f.name, "err", err)
	f.mu.Lock()
	f.lastErr = fmt.Errorf("%w: %s: %w", ErrWriteBehindMaxRetry, f.name, err)
	f.mu.Unlock()
}
