// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// errors.go — payload error taxonomy shared by codecs and layers, and the
// IsCorrupt classifier used by stores.

package codec

import (
	"errors"
	"fmt"
	"io"
)

// Payload errors. All of them mean the stored bytes are unusable.
var (
	ErrMalformed    = errors.New("codec: malformed payload")
	ErrTruncated    = errors.New("codec: truncated payload")
	ErrTypeMismatch = errors.New("codec: type mismatch")
)

// Envelope errors.
var (
	ErrVersionMismatch = errors.New("codec: version mismatch")
	ErrExpired         = errors.New("codec: payload expired")
	ErrIntegrity       = errors.New("codec: integrity check failed")
)

// Construction errors.
var (
	ErrInvalidKey = errors.New("codec: invalid encryption key")
)

// IsCorrupt reports whether err means the persisted bytes cannot be decoded
// with the current codec stack and should be discarded.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrTruncated) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrVersionMismatch) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrIntegrity)
}

// truncated maps short reads to ErrTruncated and leaves other errors alone.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}

func malformed(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
}
