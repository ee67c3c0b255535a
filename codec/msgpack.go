package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

type msgpackCodec[T any] struct {
	def  T
	opts options[T]
}

// MsgPack returns a compact tagged-binary codec for T using MessagePack.
func MsgPack[T any](def T, opts ...Option[T]) Codec[T] {
	return &msgpackCodec[T]{def: def, opts: buildOptions(opts)}
}

// Write serializes v to MessagePack bytes.
func (c *msgpackCodec[T]) Write(w io.Writer, v T) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: msgpack marshal: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Read deserializes MessagePack bytes.
func (c *msgpackCodec[T]) Read(r io.Reader) (T, error) {
	var v T
	data, err := io.ReadAll(r)
	if err != nil {
		return v, err
	}
	if len(data) == 0 {
		return v, fmt.Errorf("%w: msgpack: empty stream", ErrTruncated)
	}
	if err := msgpack.Unmarshal(data, &v); err != nil {
		var zero T
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return zero, fmt.Errorf("%w: msgpack: %w", ErrTruncated, err)
		}
		return zero, malformed("msgpack", err)
	}
	return v, nil
}

func (c *msgpackCodec[T]) Default() T { return c.def }

func (c *msgpackCodec[T]) Copy(v T) (T, error) { return copyWith(c.opts, Codec[T](c), v) }

// Name returns "msgpack".
func (c *msgpackCodec[T]) Name() string { return "msgpack" }
