// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// bytes.go — identity byte-slice and UTF-8 string codecs.

package codec

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

type bytesCodec struct{}

// Bytes is the identity codec. Its default is an empty slice.
func Bytes() Codec[[]byte] { return bytesCodec{} }

func (bytesCodec) Write(w io.Writer, v []byte) error {
	_, err := w.Write(v)
	return err
}

func (bytesCodec) Read(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

func (bytesCodec) Default() []byte { return []byte{} }

// Copy duplicates the buffer; the result never aliases v.
func (bytesCodec) Copy(v []byte) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (bytesCodec) Name() string { return "bytes" }

type stringCodec struct{}

// String stores a string as raw UTF-8. An empty stream reads as "".
func String() Codec[string] { return stringCodec{} }

func (stringCodec) Write(w io.Writer, v string) error {
	_, err := io.WriteString(w, v)
	return err
}

func (stringCodec) Read(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: string: invalid UTF-8", ErrMalformed)
	}
	return string(b), nil
}

func (stringCodec) Default() string { return "" }

// Copy returns v; strings are immutable.
func (stringCodec) Copy(v string) (string, error) { return v, nil }

func (stringCodec) Name() string { return "string" }
