package util

import (
	"fmt"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/dto"
)

// JSONMap represents a JSON object as a map.
type JSONMap = map[string]interface{}

// JSON field names of a proof.
const (
	jsonFldID                 = "id"
	jsonFldType               = "type"
	jsonFldCryptosuite        = "cryptosuite"
	jsonFldCreated            = "created"
	jsonFldExpires            = "expires"
	jsonFldVerificationMethod = "verificationMethod"
	jsonFldProofPurpose       = "proofPurpose"
	jsonFldPreviousProof      = "previousProof"
	jsonFldChallenge          = "challenge"
	jsonFldDomain             = "domain"
	jsonFldNonce              = "nonce"
	jsonFldProofValue         = "proofValue"
)

// MapSlice transforms a slice of type T to a slice of type U using a mapping function.
func MapSlice[T any, U any](slice []T, mapFn func(T) U) []U {
	result := make([]U, 0, len(slice))
	for _, v := range slice {
		result = append(result, mapFn(v))
	}
	return result
}

// SerializeProof converts a Proof into its JSON object form, omitting empty fields.
func SerializeProof(proof dto.Proof) JSONMap {
	proofMap := make(JSONMap)
	if proof.ID != "" {
		proofMap[jsonFldID] = proof.ID
	}
	if proof.Type != "" {
		proofMap[jsonFldType] = proof.Type
	}
	if proof.Cryptosuite != "" {
		proofMap[jsonFldCryptosuite] = proof.Cryptosuite
	}
	if proof.Created != "" {
		proofMap[jsonFldCreated] = proof.Created
	}
	if proof.Expires != "" {
		proofMap[jsonFldExpires] = proof.Expires
	}
	if proof.VerificationMethod != "" {
		proofMap[jsonFldVerificationMethod] = proof.VerificationMethod
	}
	if proof.ProofPurpose != "" {
		proofMap[jsonFldProofPurpose] = proof.ProofPurpose
	}
	if proof.PreviousProof != nil {
		proofMap[jsonFldPreviousProof] = proof.PreviousProof.Value()
	}
	if proof.Challenge != "" {
		proofMap[jsonFldChallenge] = proof.Challenge
	}
	if proof.Domain != "" {
		proofMap[jsonFldDomain] = proof.Domain
	}
	if proof.Nonce != "" {
		proofMap[jsonFldNonce] = proof.Nonce
	}
	if proof.ProofValue != "" {
		proofMap[jsonFldProofValue] = proof.ProofValue
	}
	return proofMap
}

// SerializeProofs converts proofs to the JSON-LD proof value: a single
// object for one proof, an array otherwise.
func SerializeProofs(proofs []dto.Proof) interface{} {
	if len(proofs) == 0 {
		return nil
	}
	result := MapSlice(proofs, SerializeProof)
	if len(result) == 1 {
		return result[0]
	}
	return result
}

// ParseProof converts a single proof map into a Proof struct.
func ParseProof(proof map[string]interface{}) (dto.Proof, error) {
	var result dto.Proof
	if t, ok := proof[jsonFldType].(string); ok && t != "" {
		result.Type = t
	} else {
		return dto.Proof{}, fmt.Errorf("failed to parse proof: invalid or missing type field")
	}
	if created, ok := proof[jsonFldCreated].(string); ok && created != "" {
		result.Created = created
	} else {
		return dto.Proof{}, fmt.Errorf("failed to parse proof: invalid or missing created field")
	}
	if vm, ok := proof[jsonFldVerificationMethod].(string); ok && vm != "" {
		result.VerificationMethod = vm
	} else {
		return dto.Proof{}, fmt.Errorf("failed to parse proof: invalid or missing verificationMethod field")
	}
	if pp, ok := proof[jsonFldProofPurpose].(string); ok && pp != "" {
		result.ProofPurpose = pp
	} else {
		return dto.Proof{}, fmt.Errorf("failed to parse proof: invalid or missing proofPurpose field")
	}
	if raw, exists := proof[jsonFldID]; exists {
		id, ok := raw.(string)
		if !ok {
			return dto.Proof{}, fmt.Errorf("failed to parse proof: id field must be a string, got %T", raw)
		}
		result.ID = id
	}
	if raw, exists := proof[jsonFldPreviousProof]; exists {
		previous, err := dto.ParsePreviousProof(raw)
		if err != nil {
			return dto.Proof{}, fmt.Errorf("failed to parse proof: %w", err)
		}
		result.PreviousProof = previous
	}
	if cs, ok := proof[jsonFldCryptosuite].(string); ok {
		result.Cryptosuite = cs
	}
	if exp, ok := proof[jsonFldExpires].(string); ok {
		result.Expires = exp
	}
	if ch, ok := proof[jsonFldChallenge].(string); ok {
		result.Challenge = ch
	}
	if dm, ok := proof[jsonFldDomain].(string); ok {
		result.Domain = dm
	}
	if n, ok := proof[jsonFldNonce].(string); ok {
		result.Nonce = n
	}
	if pv, ok := proof[jsonFldProofValue].(string); ok {
		result.ProofValue = pv
	}
	return result, nil
}
