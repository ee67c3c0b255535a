// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// errors.go — sentinel error variables returned by the public stash API,
// covering configuration, resource naming, write failures and the deferred
// flusher.

// Package stash persists one typed value per named resource in a locked,
// crash-safe file, optionally fronted by an in-memory cache and a deferred
// write-behind flusher. Values are encoded by a codec.Codec, usually a stack
// of decorators (version tag, expiration, compression, ...) around a payload
// codec.
package stash

import "errors"

// Config errors
var (
	ErrInvalidConfig = errors.New("stash: invalid configuration")
	ErrInvalidName   = errors.New("stash: invalid resource name")
)

// Lifecycle errors
var (
	ErrClosed = errors.New("stash: store is closed")
)

// Write errors
var (
	ErrWriteFailed = errors.New("stash: write failed")
)

// Write-behind errors
var (
	ErrWriteBehindMaxRetry = errors.New("stash: write-behind exceeded max retries")
)
