// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// redis.go — Redis backend. Keys are namespaced by an optional prefix and
// may carry a TTL.

package kv

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis backend.
type RedisOptions struct {
	Client    redis.UniversalClient
	KeyPrefix string
	// TTL applies to every Set; zero keeps values indefinitely.
	TTL time.Duration
	// TextSafe marks the backend as text-only so entries are base64-encoded.
	TextSafe bool
	// CloseClient closes Client when the backend is closed.
	CloseClient bool
}

// Redis is a Backend over a go-redis client.
type Redis struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	text      bool
	owns      bool
	closed    atomic.Bool
}

// NewRedis returns a Redis backend.
func NewRedis(opts RedisOptions) *Redis {
	return &Redis{
		client:    opts.Client,
		keyPrefix: opts.KeyPrefix,
		ttl:       opts.TTL,
		text:      opts.TextSafe,
		owns:      opts.CloseClient,
	}
}

// check reports a closed backend, then a done context.
func (r *Redis) check(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

func (r *Redis) key(k string) string {
	if r.keyPrefix != "" {
		return r.keyPrefix + ":" + k
	}
	return k
}

// Get returns the value for key; redis.Nil is reported as not found.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := r.check(ctx); err != nil {
		return nil, false, err
	}
	k := r.key(key)
	b, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv: redis get %s: %w", k, err)
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	k := r.key(key)
	if err := r.client.Set(ctx, k, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("kv: redis set %s: %w", k, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	k := r.key(key)
	if err := r.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("kv: redis del %s: %w", k, err)
	}
	return nil
}

// TextOnly reports whether the backend was configured as text-only.
func (r *Redis) TextOnly() bool { return r.text }

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	return r.client.Ping(ctx).Err()
}

// Close marks the backend closed and, with CloseClient, closes the client.
// Closing twice is a no-op.
func (r *Redis) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.owns {
		return r.client.Close()
	}
	return nil
}
