// Package multikey encodes and decodes raw key bytes in the Multikey format:
// base58btc multibase ('z' prefix) over an unsigned-varint multicodec header
// followed by the key bytes.
package multikey

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

// Algorithm identifies the key family of a Multikey.
type Algorithm string

const (
	Ed25519 Algorithm = "Ed25519"
	P256    Algorithm = "P-256"
	P384    Algorithm = "P-384"
)

// KeyMaterial is a decoded Multikey.
type KeyMaterial struct {
	Algorithm Algorithm
	Private   bool
	Bytes     []byte
}

type codec struct {
	code      uint64
	algorithm Algorithm
	private   bool
	size      int
}

// Multicodec table. Public EC keys are SEC1 compressed points.
var codecs = []codec{
	{code: 0xed, algorithm: Ed25519, private: false, size: 32},
	{code: 0x1300, algorithm: Ed25519, private: true, size: 32},
	{code: 0x1200, algorithm: P256, private: false, size: 33},
	{code: 0x1306, algorithm: P256, private: true, size: 32},
	{code: 0x1201, algorithm: P384, private: false, size: 49},
	{code: 0x1307, algorithm: P384, private: true, size: 48},
}

func lookupCodec(alg Algorithm, private bool) (codec, bool) {
	for _, c := range codecs {
		if c.algorithm == alg && c.private == private {
			return c, true
		}
	}
	return codec{}, false
}

func lookupCode(code uint64) (codec, bool) {
	for _, c := range codecs {
		if c.code == code {
			return c, true
		}
	}
	return codec{}, false
}

// KeySize returns the expected raw byte length for an algorithm and visibility.
func KeySize(alg Algorithm, private bool) (int, error) {
	c, ok := lookupCodec(alg, private)
	if !ok {
		return 0, fmt.Errorf("unsupported key algorithm %q", alg)
	}
	return c.size, nil
}

// Encode returns the multibase string for the given key material.
func Encode(key KeyMaterial) (string, error) {
	c, ok := lookupCodec(key.Algorithm, key.Private)
	if !ok {
		return "", fmt.Errorf("failed to encode multikey: unsupported key algorithm %q", key.Algorithm)
	}
	if len(key.Bytes) != c.size {
		return "", fmt.Errorf("failed to encode multikey: %s key must be %d bytes, got %d", describe(c), c.size, len(key.Bytes))
	}

	header := varint.ToUvarint(c.code)
	data := make([]byte, 0, len(header)+len(key.Bytes))
	data = append(data, header...)
	data = append(data, key.Bytes...)

	encoded, err := multibase.Encode(multibase.Base58BTC, data)
	if err != nil {
		return "", fmt.Errorf("failed to encode multikey: %w", err)
	}
	return encoded, nil
}

// Decode parses a multibase Multikey string.
func Decode(s string) (KeyMaterial, error) {
	if s == "" {
		return KeyMaterial{}, &DecodeError{Input: s, Reason: "empty input"}
	}
	if s[0] != 'z' {
		return KeyMaterial{}, &DecodeError{Input: s, Reason: fmt.Sprintf("unsupported multibase prefix %q", s[0])}
	}

	encoding, data, err := multibase.Decode(s)
	if err != nil {
		return KeyMaterial{}, &DecodeError{Input: s, Reason: "invalid base58btc data", Err: err}
	}
	if encoding != multibase.Base58BTC {
		return KeyMaterial{}, &DecodeError{Input: s, Reason: "unsupported multibase encoding"}
	}

	code, n, err := varint.FromUvarint(data)
	if err != nil {
		return KeyMaterial{}, &DecodeError{Input: s, Reason: "invalid multicodec header", Err: err}
	}
	c, ok := lookupCode(code)
	if !ok {
		return KeyMaterial{}, &DecodeError{Input: s, Reason: fmt.Sprintf("unknown multicodec 0x%x", code)}
	}

	raw := data[n:]
	if len(raw) != c.size {
		return KeyMaterial{}, &DecodeError{
			Input:    s,
			Reason:   fmt.Sprintf("invalid %s key length", describe(c)),
			Expected: c.size,
			Actual:   len(raw),
		}
	}

	return KeyMaterial{
		Algorithm: c.algorithm,
		Private:   c.private,
		Bytes:     bytes.Clone(raw),
	}, nil
}

// Equal reports whether two key materials hold the same key.
func (k KeyMaterial) Equal(other KeyMaterial) bool {
	return k.Algorithm == other.Algorithm && k.Private == other.Private && bytes.Equal(k.Bytes, other.Bytes)
}

func describe(c codec) string {
	if c.private {
		return string(c.algorithm) + " private"
	}
	return string(c.algorithm) + " public"
}
