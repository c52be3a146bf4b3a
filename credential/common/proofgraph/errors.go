package proofgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateProofID is returned when two proofs in one document share an id.
var ErrDuplicateProofID = errors.New("duplicate proof id")

// MissingProofError reports a previousProof reference with no matching proof.
type MissingProofError struct {
	Ref interface{}
	// NonString is set when the reference is not a string and so can never
	// match a proof id.
	NonString bool
}

func (e *MissingProofError) Error() string {
	if e.NonString {
		return fmt.Sprintf("missing proof for id = %v: reference of type %T is not a string", e.Ref, e.Ref)
	}
	return fmt.Sprintf("missing proof for id = %v", e.Ref)
}

// CyclicProofError reports a previousProof chain that loops back on itself.
// Path lists the proof ids along the cycle, starting and ending at the same id.
type CyclicProofError struct {
	Path []string
}

func (e *CyclicProofError) Error() string {
	return "cyclic proof dependency: " + strings.Join(e.Path, " -> ")
}
