// Package cryptosuite holds the fixed catalog of Data Integrity
// cryptosuites and the digest combination each one signs over.
package cryptosuite

import (
	"crypto"
	"errors"
	"fmt"
	"sort"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/canonicalizer"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
)

// ProofType is the proof type shared by every suite in the catalog.
const ProofType = "DataIntegrityProof"

// Suite identifiers.
const (
	EdDSARDFC2022 = "eddsa-rdfc-2022"
	EdDSAJCS2022  = "eddsa-jcs-2022"
	ECDSARDFC2019 = "ecdsa-rdfc-2019"
	ECDSAJCS2019  = "ecdsa-jcs-2019"
)

// SignatureAlgorithm names the signature family of a suite.
type SignatureAlgorithm string

const (
	EdDSA SignatureAlgorithm = "EdDSA"
	ECDSA SignatureAlgorithm = "ECDSA"
)

// ErrKeyMismatch is returned when a key cannot be used with a suite.
var ErrKeyMismatch = errors.New("key algorithm not supported by cryptosuite")

// Descriptor describes one cryptosuite.
type Descriptor struct {
	ID               string
	Canonicalization canonicalizer.Algorithm
	Signature        SignatureAlgorithm
}

var registry = map[string]Descriptor{
	EdDSARDFC2022: {ID: EdDSARDFC2022, Canonicalization: canonicalizer.RDFC, Signature: EdDSA},
	EdDSAJCS2022:  {ID: EdDSAJCS2022, Canonicalization: canonicalizer.JCS, Signature: EdDSA},
	ECDSARDFC2019: {ID: ECDSARDFC2019, Canonicalization: canonicalizer.RDFC, Signature: ECDSA},
	ECDSAJCS2019:  {ID: ECDSAJCS2019, Canonicalization: canonicalizer.JCS, Signature: ECDSA},
}

// Lookup returns the descriptor for a suite identifier.
func Lookup(id string) (Descriptor, error) {
	d, ok := registry[id]
	if !ok {
		return Descriptor{}, &UnsupportedSuiteError{ID: id}
	}
	return d, nil
}

// IDs lists the registered suite identifiers in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Supports reports whether keys of alg can sign for the suite.
func (d Descriptor) Supports(alg multikey.Algorithm) bool {
	switch d.Signature {
	case EdDSA:
		return alg == multikey.Ed25519
	case ECDSA:
		return alg == multikey.P256 || alg == multikey.P384
	default:
		return false
	}
}

// Hash returns the hash used for canonicalization and digests with keys of
// alg. P-384 keys select SHA-384; everything else uses SHA-256.
func (d Descriptor) Hash(alg multikey.Algorithm) (crypto.Hash, error) {
	if !d.Supports(alg) {
		return 0, fmt.Errorf("%w: %s cannot be used with %s", ErrKeyMismatch, alg, d.ID)
	}
	if alg == multikey.P384 {
		return crypto.SHA384, nil
	}
	return crypto.SHA256, nil
}

// UnsupportedSuiteError reports a cryptosuite identifier outside the catalog.
type UnsupportedSuiteError struct {
	ID string
}

func (e *UnsupportedSuiteError) Error() string {
	return fmt.Sprintf("unsupported cryptosuite %q", e.ID)
}
