// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// json.go — JSON codec wrapping encoding/json; the human-readable structured
// codec and the usual choice for values that are also inspected by hand.

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type jsonCodec[T any] struct {
	def  T
	opts options[T]
}

// JSON returns a structured codec for T backed by encoding/json.
func JSON[T any](def T, opts ...Option[T]) Codec[T] {
	return &jsonCodec[T]{def: def, opts: buildOptions(opts)}
}

// Write serializes v as a single JSON document.
func (c *jsonCodec[T]) Write(w io.Writer, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: json marshal: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Read deserializes the whole stream.
func (c *jsonCodec[T]) Read(r io.Reader) (T, error) {
	var v T
	data, err := io.ReadAll(r)
	if err != nil {
		return v, err
	}
	if len(data) == 0 {
		return v, fmt.Errorf("%w: json: empty stream", ErrTruncated)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, classifyJSON(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		var zero T
		return zero, malformed("json", fmt.Errorf("data after top-level value at offset %d", dec.InputOffset()))
	}
	return v, nil
}

func (c *jsonCodec[T]) Default() T { return c.def }

func (c *jsonCodec[T]) Copy(v T) (T, error) { return copyWith(c.opts, Codec[T](c), v) }

// Name returns "json".
func (c *jsonCodec[T]) Name() string { return "json" }

// classifyJSON maps a Decoder error. The decoder reports input that ends
// inside a value as io.ErrUnexpectedEOF, and whitespace-only input as io.EOF.
func classifyJSON(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: json: %w", ErrTypeMismatch, err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: json: %w", ErrTruncated, err)
	}
	return malformed("json", err)
}
