// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// seal.go — whole-payload layers: AES-256-GCM encryption and BLAKE3
// checksums. Both buffer the inner payload because their header depends on
// all of it.

package codec

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"lukechampine.com/blake3"
)

// sealWriter buffers everything written to it and emits seal(buffer) to w on
// Close.
type sealWriter struct {
	w    io.Writer
	buf  bytes.Buffer
	seal func(payload []byte) ([]byte, error)
	done bool
}

func (s *sealWriter) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *sealWriter) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	out, err := s.seal(s.buf.Bytes())
	if err != nil {
		return err
	}
	_, err = s.w.Write(out)
	return err
}

type encryptionLayer struct {
	gcm cipher.AEAD
}

// EncryptionLayer seals the stream with AES-256-GCM. The key must be exactly
// 32 bytes. Output is nonce (12 bytes) || ciphertext.
func EncryptionLayer(key []byte) (Layer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: must be exactly 32 bytes (got %d)", ErrInvalidKey, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return encryptionLayer{gcm: gcm}, nil
}

func (encryptionLayer) Kind() Kind   { return KindEncryption }
func (encryptionLayer) Name() string { return "aes256gcm" }

func (l encryptionLayer) Wrap(w io.Writer) (io.WriteCloser, error) {
	return &sealWriter{w: w, seal: func(plaintext []byte) ([]byte, error) {
		nonce := make([]byte, l.gcm.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, err
		}
		return l.gcm.Seal(nonce, nonce, plaintext, nil), nil
	}}, nil
}

func (l encryptionLayer) Unwrap(r io.Reader) (io.Reader, error) {
	sealed, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	nsize := l.gcm.NonceSize()
	if len(sealed) < nsize+l.gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrTruncated)
	}
	plain, err := l.gcm.Open(nil, sealed[:nsize], sealed[nsize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	return bytes.NewReader(plain), nil
}

// DigestSize is the size of the checksum envelope.
const DigestSize = 32

type checksumLayer struct{}

// ChecksumLayer prefixes the stream with the BLAKE3-256 digest of the rest.
func ChecksumLayer() Layer { return checksumLayer{} }

func (checksumLayer) Kind() Kind   { return KindChecksum }
func (checksumLayer) Name() string { return "blake3" }

func (checksumLayer) Wrap(w io.Writer) (io.WriteCloser, error) {
	return &sealWriter{w: w, seal: func(payload []byte) ([]byte, error) {
		sum := blake3.Sum256(payload)
		out := make([]byte, 0, DigestSize+len(payload))
		out = append(out, sum[:]...)
		return append(out, payload...), nil
	}}, nil
}

func (checksumLayer) Unwrap(r io.Reader) (io.Reader, error) {
	var want [DigestSize]byte
	if _, err := io.ReadFull(r, want[:]); err != nil {
		return nil, truncated(err)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if blake3.Sum256(payload) != want {
		return nil, fmt.Errorf("%w: blake3 digest mismatch", ErrIntegrity)
	}
	return bytes.NewReader(payload), nil
}
