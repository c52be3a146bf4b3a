package dataintegrity

import (
	"fmt"
	"strings"
)

// SignatureMismatchError names the proofs that did not verify.
type SignatureMismatchError struct {
	Proofs []ProofResult
}

func (e *SignatureMismatchError) Error() string {
	labels := make([]string, len(e.Proofs))
	for i, p := range e.Proofs {
		labels[i] = p.label()
	}
	return fmt.Sprintf("signature mismatch for proof(s): %s", strings.Join(labels, ", "))
}
