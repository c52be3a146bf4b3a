// Package crypto implements the signature primitives behind the data
// integrity cryptosuites: Ed25519 and deterministic (RFC 6979) ECDSA over
// P-256 and P-384 with fixed-width r||s signatures.
package crypto

import (
	"fmt"
	"io"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
)

// Signer produces signatures for one key. Implementations backed by an
// external key store can be used wherever a Signer is accepted.
type Signer interface {
	Algorithm() multikey.Algorithm
	PublicKey() multikey.KeyMaterial
	Sign(input []byte) ([]byte, error)
}

// Sign signs input with a private key. Ed25519 signs input as is. ECDSA
// treats input as an already computed digest and does not hash it again.
func Sign(input []byte, key multikey.KeyMaterial) ([]byte, error) {
	if !key.Private {
		return nil, fmt.Errorf("failed to sign: %s key is not a private key", key.Algorithm)
	}

	switch key.Algorithm {
	case multikey.Ed25519:
		return signEd25519(input, key)
	case multikey.P256, multikey.P384:
		return signECDSA(input, key)
	default:
		return nil, fmt.Errorf("failed to sign: unsupported key algorithm %q", key.Algorithm)
	}
}

// Verify checks signature over input with a public key. A malformed
// signature yields false; a malformed key yields a *VerificationError.
func Verify(signature, input []byte, key multikey.KeyMaterial) (bool, error) {
	if key.Private {
		return false, &VerificationError{Reason: "verification requires a public key"}
	}

	switch key.Algorithm {
	case multikey.Ed25519:
		return verifyEd25519(signature, input, key)
	case multikey.P256, multikey.P384:
		return verifyECDSA(signature, input, key)
	default:
		return false, &VerificationError{Reason: fmt.Sprintf("unsupported key algorithm %q", key.Algorithm)}
	}
}

// PublicKey derives the public key for a private key.
func PublicKey(private multikey.KeyMaterial) (multikey.KeyMaterial, error) {
	if !private.Private {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to derive public key: %s key is not a private key", private.Algorithm)
	}

	switch private.Algorithm {
	case multikey.Ed25519:
		return ed25519PublicKey(private)
	case multikey.P256, multikey.P384:
		return ecdsaPublicKeyFromPrivate(private)
	default:
		return multikey.KeyMaterial{}, fmt.Errorf("failed to derive public key: unsupported key algorithm %q", private.Algorithm)
	}
}

// GenerateKey creates a new private key using randomness from rand.
func GenerateKey(alg multikey.Algorithm, rand io.Reader) (multikey.KeyMaterial, error) {
	switch alg {
	case multikey.Ed25519:
		return generateEd25519(rand)
	case multikey.P256, multikey.P384:
		return generateECDSA(alg, rand)
	default:
		return multikey.KeyMaterial{}, fmt.Errorf("failed to generate key: unsupported key algorithm %q", alg)
	}
}

type keySigner struct {
	private multikey.KeyMaterial
	public  multikey.KeyMaterial
}

// NewSigner returns a Signer holding private key material in memory.
func NewSigner(private multikey.KeyMaterial) (Signer, error) {
	public, err := PublicKey(private)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	return &keySigner{private: private, public: public}, nil
}

// NewSignerFromMultikey decodes a private Multikey and returns its Signer.
func NewSignerFromMultikey(encoded string) (Signer, error) {
	key, err := multikey.Decode(encoded)
	if err != nil {
		return nil, err
	}
	return NewSigner(key)
}

func (s *keySigner) Algorithm() multikey.Algorithm {
	return s.private.Algorithm
}

func (s *keySigner) PublicKey() multikey.KeyMaterial {
	return s.public
}

func (s *keySigner) Sign(input []byte) ([]byte, error) {
	return Sign(input, s.private)
}
