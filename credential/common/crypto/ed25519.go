package crypto

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
)

func signEd25519(input []byte, key multikey.KeyMaterial) ([]byte, error) {
	if len(key.Bytes) != ed25519.SeedSize {
		return nil, fmt.Errorf("failed to sign: Ed25519 private key must be %d bytes, got %d", ed25519.SeedSize, len(key.Bytes))
	}
	return ed25519.Sign(ed25519.NewKeyFromSeed(key.Bytes), input), nil
}

func verifyEd25519(signature, input []byte, key multikey.KeyMaterial) (bool, error) {
	if len(key.Bytes) != ed25519.PublicKeySize {
		return false, &VerificationError{Reason: fmt.Sprintf("Ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key.Bytes))}
	}
	if len(signature) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(key.Bytes), input, signature), nil
}

func ed25519PublicKey(private multikey.KeyMaterial) (multikey.KeyMaterial, error) {
	if len(private.Bytes) != ed25519.SeedSize {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to derive public key: Ed25519 private key must be %d bytes, got %d", ed25519.SeedSize, len(private.Bytes))
	}
	pub := ed25519.NewKeyFromSeed(private.Bytes).Public().(ed25519.PublicKey)
	return multikey.KeyMaterial{Algorithm: multikey.Ed25519, Bytes: []byte(pub)}, nil
}

func generateEd25519(rand io.Reader) (multikey.KeyMaterial, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to generate Ed25519 key: %w", err)
	}
	return multikey.KeyMaterial{Algorithm: multikey.Ed25519, Private: true, Bytes: priv.Seed()}, nil
}
