// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// envelope.go — fixed 8-byte big-endian headers: the version tag and the
// expiration write-time layers.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/AndrewDonelson/stash/internal/clock"
)

// HeaderSize is the size of a version or expiration envelope.
const HeaderSize = 8

// PutUint64 writes v to w as 8 big-endian bytes.
func PutUint64(w io.Writer, v uint64) error {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadUint64 reads 8 big-endian bytes from r. A short read is ErrTruncated.
func ReadUint64(r io.Reader) (uint64, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, truncated(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type versionLayer struct {
	tag [HeaderSize]byte
}

// VersionLayer tags the stream with a schema version.
func VersionLayer(tag uint64) Layer {
	var l versionLayer
	binary.BigEndian.PutUint64(l.tag[:], tag)
	return l
}

func (versionLayer) Kind() Kind { return KindVersion }

func (l versionLayer) Name() string {
	return fmt.Sprintf("versioned[%d]", binary.BigEndian.Uint64(l.tag[:]))
}

func (l versionLayer) Wrap(w io.Writer) (io.WriteCloser, error) {
	if _, err := w.Write(l.tag[:]); err != nil {
		return nil, err
	}
	return nopWriteCloser{w}, nil
}

// Unwrap compares the stored tag byte for byte before any payload is read.
func (l versionLayer) Unwrap(r io.Reader) (io.Reader, error) {
	var saved [HeaderSize]byte
	if _, err := io.ReadFull(r, saved[:]); err != nil {
		return nil, truncated(err)
	}
	if !bytes.Equal(saved[:], l.tag[:]) {
		return nil, fmt.Errorf("%w: expected %d, stored %d", ErrVersionMismatch,
			binary.BigEndian.Uint64(l.tag[:]), binary.BigEndian.Uint64(saved[:]))
	}
	return r, nil
}

type expirationLayer struct {
	timeout time.Duration
	clk     clock.Clock
}

// ExpirationLayer stamps the stream with its write time in Unix milliseconds.
// A stream is expired once stamp + timeout is before now.
func ExpirationLayer(timeout time.Duration, clk clock.Clock) Layer {
	if clk == nil {
		clk = clock.Real{}
	}
	return expirationLayer{timeout: timeout, clk: clk}
}

func (expirationLayer) Kind() Kind { return KindExpiration }

func (l expirationLayer) Name() string { return "expiring[" + l.timeout.String() + "]" }

func (l expirationLayer) Wrap(w io.Writer) (io.WriteCloser, error) {
	if err := PutUint64(w, uint64(l.clk.Now().UnixMilli())); err != nil {
		return nil, err
	}
	return nopWriteCloser{w}, nil
}

func (l expirationLayer) Unwrap(r io.Reader) (io.Reader, error) {
	raw, err := ReadUint64(r)
	if err != nil {
		return nil, err
	}
	saved := int64(raw)
	if expired(saved, l.clk.Now().UnixMilli(), l.timeout.Milliseconds()) {
		return nil, fmt.Errorf("%w: written %s, timeout %s", ErrExpired,
			time.UnixMilli(saved).UTC().Format(time.RFC3339Nano), l.timeout)
	}
	return r, nil
}

// expired reports saved + limit < now without overflowing for limits near
// math.MaxInt64. now is assumed to be after the Unix epoch.
func expired(saved, now, limit int64) bool {
	if now <= saved {
		return now-saved > limit
	}
	return limit < 0 || uint64(now)-uint64(saved) > uint64(limit)
}
