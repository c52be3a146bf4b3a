package cryptosuite

import (
	"crypto"
	_ "crypto/sha256" // register SHA-256
	_ "crypto/sha512" // register SHA-384
)

func sum(h crypto.Hash, data []byte) []byte {
	hasher := h.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// Combine returns hash(proofCanon) || hash(docCanon).
func Combine(proofCanon, docCanon []byte, h crypto.Hash) []byte {
	proofHash := sum(h, proofCanon)
	docHash := sum(h, docCanon)
	combined := make([]byte, 0, len(proofHash)+len(docHash))
	combined = append(combined, proofHash...)
	return append(combined, docHash...)
}

// SigningInput returns the bytes handed to the signature primitive. EdDSA
// signs the combined digests directly; ECDSA signs one more hash of them.
func (d Descriptor) SigningInput(proofCanon, docCanon []byte, h crypto.Hash) []byte {
	combined := Combine(proofCanon, docCanon, h)
	if d.Signature == ECDSA {
		return sum(h, combined)
	}
	return combined
}
