// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// backend.go — Backend interface for key/value stores that hold one encoded
// value per key, plus the in-memory backend.

// Package kv persists single typed values under keys of a shared key/value
// backend, using the same codec stacks as file stores.
package kv

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by backends after Close.
var ErrClosed = errors.New("kv: backend closed")

// Backend stores opaque byte values by key.
type Backend interface {
	// Get returns the value for key. found is false for a missing key.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// TextOnly is implemented by backends that can only hold text values.
// Entries on such a backend are base64-encoded automatically.
type TextOnly interface {
	TextOnly() bool
}

func isTextOnly(b Backend) bool {
	t, ok := b.(TextOnly)
	return ok && t.TextOnly()
}

// Memory is a simple in-memory backend for tests and ephemeral state.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, false, err
	}
	v, ok := m.data[key]
	return bytes.Clone(v), ok, nil
}

func (m *Memory) Set(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	m.data[key] = bytes.Clone(data)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// check reports a closed backend, then a done context. mu must be held.
func (m *Memory) check(ctx context.Context) error {
	if m.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
