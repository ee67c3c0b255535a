// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// codec.go — the Codec contract shared by payload codecs and decorators,
// plus byte-slice helpers and the round-trip copy used when a codec has no
// cheaper deep copy.

// Package codec converts typed values to and from byte streams and stacks
// stream transforms (version tags, expiry stamps, compression, base64,
// encryption, checksums) on top of any payload codec.
package codec

import (
	"bytes"
	"io"
)

// Codec encodes and decodes one value type.
type Codec[T any] interface {
	// Write serializes v into w.
	Write(w io.Writer, v T) error
	// Read deserializes a value from the remainder of r.
	Read(r io.Reader) (T, error)
	// Default is the value used when nothing usable is stored.
	Default() T
	// Copy returns a deep copy of v that shares no mutable state with it.
	Copy(v T) (T, error)
	// Name returns the codec identifier used for diagnostics.
	Name() string
}

// RoundTripCopy copies v by writing it with c and reading it back.
func RoundTripCopy[T any](c Codec[T], v T) (T, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, v); err != nil {
		var zero T
		return zero, err
	}
	return c.Read(&buf)
}

// Marshal encodes v with c into a byte slice.
func Marshal[T any](c Codec[T], v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data with c.
func Unmarshal[T any](c Codec[T], data []byte) (T, error) {
	return c.Read(bytes.NewReader(data))
}

// Option customizes a payload codec.
type Option[T any] func(*options[T])

type options[T any] struct {
	copier func(T) T
}

// WithCopier installs a native deep copy that is used instead of the
// serialize-then-deserialize round trip.
func WithCopier[T any](fn func(T) T) Option[T] {
	return func(o *options[T]) { o.copier = fn }
}

func buildOptions[T any](opts []Option[T]) options[T] {
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// copyWith uses the native copier when one is set.
func copyWith[T any](o options[T], c Codec[T], v T) (T, error) {
	if o.copier != nil {
		return o.copier(v), nil
	}
	return RoundTripCopy(c, v)
}
