// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// layer.go — Layer (one reversible stream transform), Decorated (a codec
// wrapping an inner codec with one layer), the kind set used to collapse
// duplicate idempotent layers, and the Stack builder.

package codec

import (
	"io"
	"strings"
	"time"

	"github.com/AndrewDonelson/stash/internal/clock"
)

// Kind identifies a layer type. A Kind value may also hold a set of kinds.
type Kind uint16

const (
	KindVersion Kind = 1 << iota
	KindExpiration
	KindCompression
	KindTextSafe
	KindEncryption
	KindChecksum
	KindCustom
)

var kindNames = []struct {
	k    Kind
	name string
}{
	{KindVersion, "version"},
	{KindExpiration, "expiration"},
	{KindCompression, "compression"},
	{KindTextSafe, "textsafe"},
	{KindEncryption, "encryption"},
	{KindChecksum, "checksum"},
	{KindCustom, "custom"},
}

// String lists the kinds in k joined by "|".
func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for _, kn := range kindNames {
		if k&kn.k != 0 {
			parts = append(parts, kn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether every kind in other is present in k.
func (k Kind) Has(other Kind) bool { return k&other == other }

// Idempotent kinds transform the stream the same way no matter how many times
// they are requested, so a second request is dropped.
func (k Kind) Idempotent() bool {
	return k&(KindCompression|KindTextSafe) == k && k != 0
}

// Layer is one reversible stream transform. Wrap and Unwrap must be exact
// inverses; Decorated applies them so that the last layer added on write is
// the first removed on read.
type Layer interface {
	Kind() Kind
	Name() string
	// Wrap returns a writer whose Close completes the transform. Close must
	// not close w.
	Wrap(w io.Writer) (io.WriteCloser, error)
	// Unwrap returns the inner payload stream of r.
	Unwrap(r io.Reader) (io.Reader, error)
}

// Decorated is a codec that runs an inner codec behind one layer.
type Decorated[T any] struct {
	inner Codec[T]
	layer Layer
	kinds Kind
}

// Decorate wraps inner with l. If l is idempotent and its kind is already in
// inner's chain, inner is returned unchanged.
func Decorate[T any](inner Codec[T], l Layer) Codec[T] {
	have := KindsOf(inner)
	if l.Kind().Idempotent() && have.Has(l.Kind()) {
		return inner
	}
	return &Decorated[T]{inner: inner, layer: l, kinds: have | l.Kind()}
}

// KindsOf returns the set of layer kinds applied anywhere in c's chain.
func KindsOf[T any](c Codec[T]) Kind {
	if k, ok := c.(interface{ Kinds() Kind }); ok {
		return k.Kinds()
	}
	return 0
}

// Write runs the layer around the inner codec's output.
func (d *Decorated[T]) Write(w io.Writer, v T) error {
	wc, err := d.layer.Wrap(w)
	if err != nil {
		return err
	}
	// A failed inner write leaves wc unclosed so sealing layers emit nothing.
	if err := d.inner.Write(wc, v); err != nil {
		return err
	}
	return wc.Close()
}

// Read removes the layer and hands the remaining stream to the inner codec.
func (d *Decorated[T]) Read(r io.Reader) (T, error) {
	ir, err := d.layer.Unwrap(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.inner.Read(ir)
}

func (d *Decorated[T]) Default() T { return d.inner.Default() }

// Copy delegates to the inner codec; envelopes are not part of the value.
func (d *Decorated[T]) Copy(v T) (T, error) { return d.inner.Copy(v) }

func (d *Decorated[T]) Name() string { return d.layer.Name() + "(" + d.inner.Name() + ")" }

// Kinds returns every layer kind in this chain.
func (d *Decorated[T]) Kinds() Kind { return d.kinds }

// Inner returns the wrapped codec.
func (d *Decorated[T]) Inner() Codec[T] { return d.inner }

// Layer returns this decorator's transform.
func (d *Decorated[T]) Layer() Layer { return d.layer }

type defaulted[T any] struct {
	Codec[T]
	def T
}

// WithDefault keeps inner's stream format and substitutes def as the default.
func WithDefault[T any](inner Codec[T], def T) Codec[T] {
	if d, ok := inner.(*defaulted[T]); ok {
		inner = d.Codec
	}
	return &defaulted[T]{Codec: inner, def: def}
}

func (d *defaulted[T]) Default() T   { return d.def }
func (d *defaulted[T]) Kinds() Kind  { return KindsOf(d.Codec) }
func (d *defaulted[T]) Name() string { return d.Codec.Name() }

// Versioned prefixes the payload with an 8-byte big-endian tag.
func Versioned[T any](inner Codec[T], tag uint64) Codec[T] {
	return Decorate(inner, VersionLayer(tag))
}

// Expiring prefixes the payload with its write time and rejects it once
// timeout has elapsed.
func Expiring[T any](inner Codec[T], timeout time.Duration) Codec[T] {
	return Decorate(inner, ExpirationLayer(timeout, clock.Real{}))
}

// ExpiringClock is Expiring with an explicit clock.
func ExpiringClock[T any](inner Codec[T], timeout time.Duration, clk clock.Clock) Codec[T] {
	return Decorate(inner, ExpirationLayer(timeout, clk))
}

// Compressed DEFLATE-compresses the payload.
func Compressed[T any](inner Codec[T]) Codec[T] {
	return Decorate(inner, CompressionLayer())
}

// TextSafe base64-encodes the payload.
func TextSafe[T any](inner Codec[T]) Codec[T] {
	return Decorate(inner, TextSafeLayer())
}

// Encrypted seals the payload with AES-256-GCM under a 32-byte key.
func Encrypted[T any](inner Codec[T], key []byte) (Codec[T], error) {
	l, err := EncryptionLayer(key)
	if err != nil {
		return nil, err
	}
	return Decorate(inner, l), nil
}

// Checksummed prefixes the payload with its BLAKE3 digest.
func Checksummed[T any](inner Codec[T]) Codec[T] {
	return Decorate(inner, ChecksumLayer())
}

// Builder stacks layers on a payload codec. Layers are applied in call order,
// so the first call ends up nearest the payload and the last call writes the
// outermost header.
type Builder[T any] struct {
	c   Codec[T]
	err error
}

// Stack starts a builder on inner.
func Stack[T any](inner Codec[T]) *Builder[T] {
	return &Builder[T]{c: inner}
}

// Layer adds an arbitrary layer.
func (b *Builder[T]) Layer(l Layer) *Builder[T] {
	if b.err == nil {
		b.c = Decorate(b.c, l)
	}
	return b
}

func (b *Builder[T]) Versioned(tag uint64) *Builder[T] { return b.Layer(VersionLayer(tag)) }

func (b *Builder[T]) Expiring(timeout time.Duration) *Builder[T] {
	return b.Layer(ExpirationLayer(timeout, clock.Real{}))
}

func (b *Builder[T]) ExpiringClock(timeout time.Duration, clk clock.Clock) *Builder[T] {
	return b.Layer(ExpirationLayer(timeout, clk))
}

func (b *Builder[T]) Compressed() *Builder[T]  { return b.Layer(CompressionLayer()) }
func (b *Builder[T]) TextSafe() *Builder[T]    { return b.Layer(TextSafeLayer()) }
func (b *Builder[T]) Checksummed() *Builder[T] { return b.Layer(ChecksumLayer()) }

func (b *Builder[T]) Encrypted(key []byte) *Builder[T] {
	if b.err != nil {
		return b
	}
	l, err := EncryptionLayer(key)
	if err != nil {
		b.err = err
		return b
	}
	return b.Layer(l)
}

// Default overrides the default value of the finished chain.
func (b *Builder[T]) Default(def T) *Builder[T] {
	if b.err == nil {
		b.c = WithDefault(b.c, def)
	}
	return b
}

// Build returns the finished codec or the first construction error.
func (b *Builder[T]) Build() (Codec[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder[T]) MustBuild() Codec[T] {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
