// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// store.go — Store, the keyed file store: one codec bound to one named file,
// a monitor-guarded memory cache, and write-or-delete persistence.

package stash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndrewDonelson/stash/codec"
	"github.com/AndrewDonelson/stash/internal/clock"
	"github.com/AndrewDonelson/stash/internal/metrics"
	"github.com/AndrewDonelson/stash/internal/resource"
)

// ────────────────────────────────────────────────────────────────────────────
// Options
// ────────────────────────────────────────────────────────────────────────────

// Option customises a single store.
type Option[T any] func(*options[T])

type options[T any] struct {
	absent func(T) bool
	tier   *Tier
	mode   *WriteMode
}

// WithAbsent marks values for which Write deletes the file instead of
// storing them.
func WithAbsent[T any](isAbsent func(T) bool) Option[T] {
	return func(o *options[T]) { o.absent = isAbsent }
}

// WithTier overrides Config.Tier for this store.
func WithTier[T any](t Tier) Option[T] {
	return func(o *options[T]) { o.tier = &t }
}

// WithWriteMode overrides Config.WriteMode for this store.
func WithWriteMode[T any](m WriteMode) Option[T] {
	return func(o *options[T]) { o.mode = &m }
}

// Nil is an absent predicate for pointer-typed stores.
func Nil[E any](v *E) bool { return v == nil }

// Zero is an absent predicate that treats the zero value as absent.
func Zero[E comparable](v E) bool {
	var zero E
	return v == zero
}

// ────────────────────────────────────────────────────────────────────────────
// Stats
// ────────────────────────────────────────────────────────────────────────────

type storeStats struct {
	Reads   atomic.Int64
	Hits    atomic.Int64
	Writes  atomic.Int64
	Deletes atomic.Int64
	Errors  atomic.Int64
	Corrupt atomic.Int64
}

// Stats is the snapshot returned by Store.Stats().
type Stats struct {
	Reads   int64
	Hits    int64
	Misses  int64
	Writes  int64
	Deletes int64
	Errors  int64
	Corrupt int64
	Pending int64
}

// ────────────────────────────────────────────────────────────────────────────
// Store
// ────────────────────────────────────────────────────────────────────────────

// Store binds a codec to one named resource. All methods are safe for
// concurrent use. Two stores for the same resource, in one process or in
// several, serialise their disk access on the resource's lock file.
type Store[T any] struct {
	name    string
	res     resource.Resource
	codec   codec.Codec[T]
	absent  func(T) bool
	cacheOn bool
	mode    WriteMode
	logger  Logger
	metrics metrics.MetricsRecorder
	clk     clock.Clock

	// mu guards the cache and closed, and is always taken before disk.mu.
	mu        sync.Mutex
	cached    T
	hasCached bool
	closed    bool

	disk    *disk
	gen     atomic.Uint64
	flusher *flusher[T]
	stats   storeStats
}

// NewStore opens the store for name. The resource's directory is created
// but no file is read until the first Read.
//
// Write-behind needs the memory cache; with DisableMemoryCache it falls back
// to write-through.
func NewStore[T any](cfg Config, name string, c codec.Codec[T], opts ...Option[T]) (*Store[T], error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil codec", ErrInvalidConfig)
	}
	cfg.defaults()
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	if o.tier != nil {
		cfg.Tier = *o.tier
	}
	if o.mode != nil {
		cfg.WriteMode = *o.mode
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	res, err := resolve(&cfg, cfg.Tier, name)
	if err != nil {
		return nil, err
	}

	s := &Store[T]{
		name:    name,
		res:     res,
		codec:   c,
		absent:  o.absent,
		cacheOn: !cfg.DisableMemoryCache,
		mode:    cfg.WriteMode,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		clk:     cfg.Clock,
		disk:    newDisk(res, &cfg),
	}
	if s.mode == WriteBehind && !s.cacheOn {
		s.logger.Warn("stash: write-behind requires the memory cache, using write-through", "store", name)
		s.mode = WriteThrough
	}
	if s.mode == WriteBehind {
		s.flusher = newFlusher(name, s.persist, &cfg)
		s.flusher.start()
	}
	return s, nil
}

// Name returns the logical resource name.
func (s *Store[T]) Name() string { return s.name }

// Path returns the payload file path.
func (s *Store[T]) Path() string { return s.res.Path }

// Tier returns the tier the resource lives in.
func (s *Store[T]) Tier() Tier { return s.res.Tier }

// Codec returns the store's codec.
func (s *Store[T]) Codec() codec.Codec[T] { return s.codec }

// Read returns the current value, or the codec's default when the resource
// is absent, unreadable, or the store is closed. It never fails.
func (s *Store[T]) Read() T {
	v, _ := s.Load()
	return v
}

// Load is Read that also reports filesystem errors. Unusable payloads (bad
// version, expired, undecodable) are deleted and reported as the default with
// a nil error, like an absent file.
func (s *Store[T]) Load() (T, error) {
	start := s.clk.Now()
	defer func() { s.metrics.RecordLatency(s.name, "read", clock.Since(s.clk, start)) }()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.fallback(), ErrClosed
	}
	s.stats.Reads.Add(1)
	if s.cacheOn && s.hasCached {
		s.stats.Hits.Add(1)
		s.metrics.RecordHit(s.name)
		return s.handOut(s.cached), nil
	}
	s.metrics.RecordMiss(s.name)

	var (
		v         T
		cacheable bool
	)
	err := s.disk.withLock(func() error {
		var err error
		v, cacheable, err = s.readLocked()
		return err
	})
	if err != nil {
		s.stats.Errors.Add(1)
		s.metrics.RecordError(s.name, "read")
		s.logger.Error("stash: read failed, using default", "store", s.name, "path", s.res.Path, "err", err)
		return s.fallback(), err
	}
	if !s.cacheOn {
		return v, nil
	}
	if cacheable {
		s.cached, s.hasCached = v, true
	}
	return s.handOut(v), nil
}

// readLocked decodes the payload. The lock must be held. cacheable is false
// only when the value is a fallback for an I/O failure.
func (s *Store[T]) readLocked() (v T, cacheable bool, err error) {
	restored, err := s.disk.restoreBackup()
	if err != nil {
		return v, false, err
	}
	if restored {
		s.logger.Warn("stash: restored backup of interrupted write", "store", s.name, "path", s.res.Path)
	}

	v, err = readFile(s.res.Path, s.codec)
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return s.fallback(), true, nil
	case isIOError(err):
		return v, false, err
	}

	s.stats.Corrupt.Add(1)
	s.metrics.RecordCorrupt(s.name)
	s.logger.Warn("stash: deleting unreadable file", "store", s.name, "path", s.res.Path,
		"corrupt", codec.IsCorrupt(err), "err", err)
	if rerr := s.disk.remove(); rerr != nil {
		s.logger.Error("stash: delete unreadable file", "store", s.name, "err", rerr)
	}
	return s.fallback(), true, nil
}

// fallback returns a copy of the codec default. Defaults may hold mutable
// state (maps, pointers) shared by every read.
func (s *Store[T]) fallback() T {
	return s.handOut(s.codec.Default())
}

// handOut returns a copy of v so callers cannot mutate the cache or the
// codec default.
func (s *Store[T]) handOut(v T) T {
	cp, err := s.codec.Copy(v)
	if err != nil {
		s.logger.Warn("stash: copy failed, returning cached value", "store", s.name, "err", err)
		return v
	}
	return cp
}

// Write stores v, or deletes the file if v is absent. The cache is updated
// with v itself before anything touches disk; v must not be mutated
// afterwards. In write-behind mode Write returns once the value is queued.
func (s *Store[T]) Write(v T) error {
	return s.write(v, s.mode)
}

// WriteNow is Write in write-through mode regardless of the store's mode.
func (s *Store[T]) WriteNow(v T) error {
	return s.write(v, WriteThrough)
}

func (s *Store[T]) write(v T, mode WriteMode) error {
	start := s.clk.Now()
	defer func() { s.metrics.RecordLatency(s.name, "write", clock.Since(s.clk, start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stats.Writes.Add(1)

	op := pending[T]{value: v, absent: s.absent != nil && s.absent(v)}
	if s.cacheOn {
		if op.absent {
			s.cached = s.fallback()
		} else {
			s.cached = v
		}
		s.hasCached = true
	}
	op.gen = s.gen.Add(1)

	if s.flusher != nil {
		if mode == WriteBehind {
			s.flusher.enqueue(op)
			return nil
		}
		s.flusher.cancel()
	}
	if err := s.persist(op); err != nil {
		s.stats.Errors.Add(1)
		s.metrics.RecordError(s.name, "write")
		s.logger.Error("stash: write failed", "store", s.name, "path", s.res.Path, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
	}
	return nil
}

// persist writes op under the lock unless a later write or delete has
// superseded it.
func (s *Store[T]) persist(op pending[T]) error {
	return s.disk.withLock(func() error {
		if s.gen.Load() != op.gen {
			return nil
		}
		if op.absent {
			return s.disk.remove()
		}
		return s.disk.save(func(w io.Writer) error {
			return s.codec.Write(w, op.value)
		})
	})
}

// Delete drops any queued write, removes the payload and backup files and
// clears the cache. The next Read returns the default.
func (s *Store[T]) Delete() error {
	start := s.clk.Now()
	defer func() { s.metrics.RecordLatency(s.name, "delete", clock.Since(s.clk, start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stats.Deletes.Add(1)
	s.gen.Add(1)
	var zero T
	s.cached, s.hasCached = zero, false
	if s.flusher != nil {
		s.flusher.cancel()
	}
	if err := s.disk.withLock(s.disk.remove); err != nil {
		s.stats.Errors.Add(1)
		s.metrics.RecordError(s.name, "delete")
		s.logger.Error("stash: delete failed", "store", s.name, "path", s.res.Path, "err", err)
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, s.name, err)
	}
	return nil
}

// Flush blocks until every queued write has reached disk or exhausted its
// retries. It returns an ErrWriteBehindMaxRetry error once for each value
// that could not be persisted since the previous Flush.
func (s *Store[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if s.flusher == nil {
		return nil
	}
	return s.flusher.wait(ctx)
}

// Close persists any queued write and stops the flusher. Later calls on the
// store return ErrClosed.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()
	if s.flusher == nil {
		return nil
	}
	return s.flusher.stop()
}

// Stats returns a snapshot of the store's counters.
func (s *Store[T]) Stats() Stats {
	st := Stats{
		Reads:   s.stats.Reads.Load(),
		Hits:    s.stats.Hits.Load(),
		Writes:  s.stats.Writes.Load(),
		Deletes: s.stats.Deletes.Load(),
		Errors:  s.stats.Errors.Load(),
		Corrupt: s.stats.Corrupt.Load(),
	}
	st.Misses = st.Reads - st.Hits
	if s.flusher != nil {
		st.Pending = s.flusher.pendingCount()
	}
	return st
}

// FlushTimeout is a convenience for Flush with a deadline.
func (s *Store[T]) FlushTimeout(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.Flush(ctx)
}
