// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// entry.go — Entry binds a codec to one key of a Backend with the same
// degrade-to-default read semantics as a file store.

package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndrewDonelson/stash"
	"github.com/AndrewDonelson/stash/codec"
)

// ErrInvalidKey is returned for an empty entry key.
var ErrInvalidKey = errors.New("kv: invalid key")

// EntryOption customises an Entry.
type EntryOption func(*entryOptions)

type entryOptions struct {
	logger stash.Logger
}

// WithLogger routes entry diagnostics to l.
func WithLogger(l stash.Logger) EntryOption {
	return func(o *entryOptions) { o.logger = l }
}

// Entry is one typed value stored under one key. Entries hold no cache; every
// Get reads the backend.
type Entry[T any] struct {
	backend Backend
	key     string
	codec   codec.Codec[T]
	logger  stash.Logger
}

// NewEntry binds c to key in b. On a text-only backend c is wrapped with
// codec.TextSafe (a no-op if it is already text-safe).
func NewEntry[T any](b Backend, key string, c codec.Codec[T], opts ...EntryOption) (*Entry[T], error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if b == nil || c == nil {
		return nil, fmt.Errorf("%w: nil backend or codec", stash.ErrInvalidConfig)
	}
	o := entryOptions{logger: stash.NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if isTextOnly(b) {
		c = codec.TextSafe(c)
	}
	return &Entry[T]{backend: b, key: key, codec: c, logger: o.logger}, nil
}

// Key returns the backend key.
func (e *Entry[T]) Key() string { return e.key }

// Codec returns the effective codec, including any text-safe layer.
func (e *Entry[T]) Codec() codec.Codec[T] { return e.codec }

// Get returns the stored value or the codec default. A value that cannot be
// decoded is deleted.
func (e *Entry[T]) Get(ctx context.Context) T {
	v, _ := e.Load(ctx)
	return v
}

// Load is Get that also reports backend errors.
func (e *Entry[T]) Load(ctx context.Context) (T, error) {
	data, found, err := e.backend.Get(ctx, e.key)
	if err != nil {
		e.logger.Error("kv: get failed, using default", "key", e.key, "err", err)
		return e.fallback(), err
	}
	if !found {
		return e.fallback(), nil
	}
	v, err := codec.Unmarshal(e.codec, data)
	if err == nil {
		return v, nil
	}
	e.logger.Warn("kv: deleting unreadable value", "key", e.key, "corrupt", codec.IsCorrupt(err), "err", err)
	if derr := e.backend.Delete(ctx, e.key); derr != nil {
		e.logger.Error("kv: delete unreadable value", "key", e.key, "err", derr)
	}
	return e.fallback(), nil
}

// fallback returns a copy of the codec default so callers cannot mutate it.
func (e *Entry[T]) fallback() T {
	def := e.codec.Default()
	v, err := e.codec.Copy(def)
	if err != nil {
		e.logger.Warn("kv: copy of default failed", "key", e.key, "err", err)
		return def
	}
	return v
}

// Set encodes v and stores it.
func (e *Entry[T]) Set(ctx context.Context, v T) error {
	data, err := codec.Marshal(e.codec, v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", stash.ErrWriteFailed, e.key, err)
	}
	if err := e.backend.Set(ctx, e.key, data); err != nil {
		return fmt.Errorf("%w: %s: %w", stash.ErrWriteFailed, e.key, err)
	}
	return nil
}

// Delete removes the value.
func (e *Entry[T]) Delete(ctx context.Context) error {
	return e.backend.Delete(ctx, e.key)
}
