package codec

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"strings"
)

type gobCodec[T any] struct {
	def  T
	opts options[T]
}

// Gob returns the self-describing binary blob codec. Each stream holds one
// gob type definition followed by one value, so files stay readable by a
// fresh decoder.
func Gob[T any](def T, opts ...Option[T]) Codec[T] {
	return &gobCodec[T]{def: def, opts: buildOptions(opts)}
}

func (c *gobCodec[T]) Write(w io.Writer, v T) error {
	if err := gob.NewEncoder(w).Encode(&v); err != nil {
		return fmt.Errorf("codec: gob encode: %w", err)
	}
	return nil
}

func (c *gobCodec[T]) Read(r io.Reader) (T, error) {
	var v T
	if err := gob.NewDecoder(r).Decode(&v); err != nil {
		var zero T
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return zero, fmt.Errorf("%w: gob: %w", ErrTruncated, err)
		case strings.Contains(err.Error(), "type mismatch"):
			return zero, fmt.Errorf("%w: gob: %w", ErrTypeMismatch, err)
		case isGobError(err):
			return zero, malformed("gob", err)
		}
		return zero, err
	}
	return v, nil
}

// isGobError separates decoder errors from the underlying reader's errors,
// which the decoder returns unchanged.
func isGobError(err error) bool {
	return strings.HasPrefix(err.Error(), "gob: ")
}

func (c *gobCodec[T]) Default() T { return c.def }

func (c *gobCodec[T]) Copy(v T) (T, error) { return copyWith(c.opts, Codec[T](c), v) }

func (c *gobCodec[T]) Name() string { return "gob" }
