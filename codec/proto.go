package codec

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
)

type protoCodec[T proto.Message] struct {
	newFn func() T
	def   T
}

// Proto returns a codec for a generated protobuf message type. newFn must
// return a fresh, empty message to decode into.
func Proto[T proto.Message](newFn func() T, def T) Codec[T] {
	return &protoCodec[T]{newFn: newFn, def: def}
}

func (c *protoCodec[T]) Write(w io.Writer, v T) error {
	b, err := proto.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: proto marshal: %w", err)
	}
	_, err = w.Write(b)
	return err
}

func (c *protoCodec[T]) Read(r io.Reader) (T, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var zero T
		return zero, err
	}
	m := c.newFn()
	if err := proto.Unmarshal(data, m); err != nil {
		var zero T
		return zero, malformed("proto", err)
	}
	return m, nil
}

func (c *protoCodec[T]) Default() T { return c.def }

// Copy uses the message's own deep clone.
func (c *protoCodec[T]) Copy(v T) (T, error) {
	out, _ := proto.Clone(v).(T)
	return out, nil
}

func (c *protoCodec[T]) Name() string { return "proto" }
