// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// pogreb.go — embedded on-disk backend on the pogreb hash store.

package kv

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/akrylysov/pogreb"
)

// Pogreb is an embedded backend. The database directory is created on open.
type Pogreb struct {
	path string
	db   *pogreb.DB

	// mu is held shared by operations and exclusively by Close.
	mu     sync.RWMutex
	closed bool
}

// NewPogreb opens (creating if necessary) the pogreb database at path.
func NewPogreb(path string) (*Pogreb, error) {
	pogreb.SetLogger(log.New(io.Discard, "", 0))

	db, err := pogreb.Open(path, nil)
	if err != nil {
		return nil, fmt.Errorf("kv: pogreb open %s: %w", path, err)
	}
	return &Pogreb{path: path, db: db}, nil
}

// check reports a closed backend, then a done context. mu must be held.
func (p *Pogreb) check(ctx context.Context) error {
	if p.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// Get returns the value for key if present.
func (p *Pogreb) Get(ctx context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.check(ctx); err != nil {
		return nil, false, err
	}
	v, err := p.db.Get([]byte(key))
	if err != nil {
		return nil, false, fmt.Errorf("kv: pogreb get %s: %w", key, err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

func (p *Pogreb) Set(ctx context.Context, key string, data []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.check(ctx); err != nil {
		return err
	}
	if err := p.db.Put([]byte(key), data); err != nil {
		return fmt.Errorf("kv: pogreb put %s: %w", key, err)
	}
	return nil
}

func (p *Pogreb) Delete(ctx context.Context, key string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if err := p.check(ctx); err != nil {
		return err
	}
	if err := p.db.Delete([]byte(key)); err != nil {
		return fmt.Errorf("kv: pogreb delete %s: %w", key, err)
	}
	return nil
}

// Sync flushes the database to disk.
func (p *Pogreb) Sync() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Sync()
}

// Count returns the number of keys, or zero once closed.
func (p *Pogreb) Count() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0
	}
	return p.db.Count()
}

// Close closes the database. Closing twice is a no-op.
func (p *Pogreb) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
