package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"math/big"

	"github.com/codahale/rfc6979"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
)

type curveParams struct {
	curve elliptic.Curve
	// ecdhCurve derives public points from scalars.
	ecdhCurve ecdh.Curve
	// size is the byte length of a scalar and of each signature half.
	size int
	// hash drives the RFC 6979 nonce derivation.
	hash func() hash.Hash
}

func curveFor(alg multikey.Algorithm) (curveParams, error) {
	switch alg {
	case multikey.P256:
		return curveParams{curve: elliptic.P256(), ecdhCurve: ecdh.P256(), size: 32, hash: sha256.New}, nil
	case multikey.P384:
		return curveParams{curve: elliptic.P384(), ecdhCurve: ecdh.P384(), size: 48, hash: sha512.New384}, nil
	default:
		return curveParams{}, fmt.Errorf("unsupported curve %q", alg)
	}
}

func ecdsaPrivateKey(key multikey.KeyMaterial, c curveParams) (*ecdsa.PrivateKey, error) {
	if len(key.Bytes) != c.size {
		return nil, fmt.Errorf("%s private key must be %d bytes, got %d", key.Algorithm, c.size, len(key.Bytes))
	}
	d := new(big.Int).SetBytes(key.Bytes)
	if d.Sign() == 0 || d.Cmp(c.curve.Params().N) >= 0 {
		return nil, fmt.Errorf("%s private key is out of range", key.Algorithm)
	}

	scalar, err := c.ecdhCurve.NewPrivateKey(key.Bytes)
	if err != nil {
		return nil, fmt.Errorf("invalid %s private key: %w", key.Algorithm, err)
	}
	// Uncompressed encoding: 0x04 || X || Y.
	point := scalar.PublicKey().Bytes()

	priv := &ecdsa.PrivateKey{D: d}
	priv.PublicKey.Curve = c.curve
	priv.PublicKey.X = new(big.Int).SetBytes(point[1 : 1+c.size])
	priv.PublicKey.Y = new(big.Int).SetBytes(point[1+c.size:])
	return priv, nil
}

func ecdsaPublicKey(key multikey.KeyMaterial, c curveParams) (*ecdsa.PublicKey, error) {
	if len(key.Bytes) != c.size+1 {
		return nil, fmt.Errorf("%s public key must be %d bytes, got %d", key.Algorithm, c.size+1, len(key.Bytes))
	}
	x, y := elliptic.UnmarshalCompressed(c.curve, key.Bytes)
	if x == nil {
		return nil, fmt.Errorf("%s public key is not a valid compressed point", key.Algorithm)
	}
	return &ecdsa.PublicKey{Curve: c.curve, X: x, Y: y}, nil
}

// signECDSA signs digest deterministically and returns r||s, each half
// left-padded to the curve size.
func signECDSA(digest []byte, key multikey.KeyMaterial) ([]byte, error) {
	c, err := curveFor(key.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	priv, err := ecdsaPrivateKey(key, c)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	r, s, err := rfc6979.SignECDSA(priv, digest, c.hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	signature := make([]byte, 2*c.size)
	r.FillBytes(signature[:c.size])
	s.FillBytes(signature[c.size:])
	return signature, nil
}

func verifyECDSA(signature, digest []byte, key multikey.KeyMaterial) (bool, error) {
	c, err := curveFor(key.Algorithm)
	if err != nil {
		return false, &VerificationError{Reason: err.Error()}
	}
	pub, err := ecdsaPublicKey(key, c)
	if err != nil {
		return false, &VerificationError{Reason: "invalid public key", Err: err}
	}
	if len(signature) != 2*c.size {
		return false, nil
	}

	r := new(big.Int).SetBytes(signature[:c.size])
	s := new(big.Int).SetBytes(signature[c.size:])
	return ecdsa.Verify(pub, digest, r, s), nil
}

func ecdsaPublicKeyFromPrivate(private multikey.KeyMaterial) (multikey.KeyMaterial, error) {
	c, err := curveFor(private.Algorithm)
	if err != nil {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to derive public key: %w", err)
	}
	priv, err := ecdsaPrivateKey(private, c)
	if err != nil {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to derive public key: %w", err)
	}
	return multikey.KeyMaterial{
		Algorithm: private.Algorithm,
		Bytes:     elliptic.MarshalCompressed(c.curve, priv.PublicKey.X, priv.PublicKey.Y),
	}, nil
}

func generateECDSA(alg multikey.Algorithm, rand io.Reader) (multikey.KeyMaterial, error) {
	c, err := curveFor(alg)
	if err != nil {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to generate key: %w", err)
	}
	priv, err := ecdsa.GenerateKey(c.curve, rand)
	if err != nil {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to generate %s key: %w", alg, err)
	}
	return multikey.KeyMaterial{Algorithm: alg, Private: true, Bytes: priv.D.FillBytes(make([]byte, c.size))}, nil
}
