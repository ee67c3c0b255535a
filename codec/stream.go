// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// stream.go — streaming layers: DEFLATE compression and base64 text-safe
// encoding.

package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// mapReader rewrites errors of a decoding reader into the codec taxonomy.
type mapReader struct {
	r     io.Reader
	remap func(error) error
}

func (m *mapReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	if err != nil && err != io.EOF {
		err = m.remap(err)
	}
	return n, err
}

type compressionLayer struct {
	level int
}

// CompressionLayer DEFLATE-compresses the stream at the default level.
func CompressionLayer() Layer { return compressionLayer{level: flate.DefaultCompression} }

// CompressionLayerLevel is CompressionLayer with an explicit flate level.
func CompressionLayerLevel(level int) Layer { return compressionLayer{level: level} }

func (compressionLayer) Kind() Kind   { return KindCompression }
func (compressionLayer) Name() string { return "deflate" }

// Wrap returns the flate writer; its Close flushes the final block without
// closing w.
func (l compressionLayer) Wrap(w io.Writer) (io.WriteCloser, error) {
	fw, err := flate.NewWriter(w, l.level)
	if err != nil {
		return nil, fmt.Errorf("codec: deflate: %w", err)
	}
	return fw, nil
}

func (compressionLayer) Unwrap(r io.Reader) (io.Reader, error) {
	return &mapReader{r: flate.NewReader(r), remap: func(err error) error {
		var corrupt flate.CorruptInputError
		switch {
		case errors.As(err, &corrupt):
			return malformed("deflate", err)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: deflate: %w", ErrTruncated, err)
		}
		return err
	}}, nil
}

type textSafeLayer struct {
	enc *base64.Encoding
}

// TextSafeLayer encodes the stream as standard padded base64.
func TextSafeLayer() Layer { return textSafeLayer{enc: base64.StdEncoding} }

func (textSafeLayer) Kind() Kind   { return KindTextSafe }
func (textSafeLayer) Name() string { return "base64" }

func (l textSafeLayer) Wrap(w io.Writer) (io.WriteCloser, error) {
	return base64.NewEncoder(l.enc, w), nil
}

func (l textSafeLayer) Unwrap(r io.Reader) (io.Reader, error) {
	return &mapReader{r: base64.NewDecoder(l.enc, r), remap: func(err error) error {
		var corrupt base64.CorruptInputError
		switch {
		case errors.As(err, &corrupt):
			return malformed("base64", err)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: base64: %w", ErrTruncated, err)
		}
		return err
	}}, nil
}
