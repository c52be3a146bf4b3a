// Package schema checks the JSON shape of proof configurations.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const proofConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "cryptosuite", "created", "verificationMethod", "proofPurpose"],
  "properties": {
    "@context": {},
    "id": {"type": "string", "minLength": 1},
    "type": {"const": "DataIntegrityProof"},
    "cryptosuite": {"type": "string", "minLength": 1},
    "created": {"type": "string", "format": "date-time"},
    "expires": {"type": "string", "format": "date-time"},
    "verificationMethod": {"type": "string", "minLength": 1},
    "proofPurpose": {"type": "string", "minLength": 1},
    "previousProof": {
      "oneOf": [
        {"type": "string", "minLength": 1},
        {"type": "array", "items": {"type": "string", "minLength": 1}}
      ]
    },
    "challenge": {"type": "string"},
    "domain": {"type": "string"},
    "nonce": {"type": "string"},
    "proofValue": {"type": "string", "pattern": "^z[1-9A-HJ-NP-Za-km-z]+$"}
  }
}`

var proofConfigSchemaLoader = gojsonschema.NewStringLoader(proofConfigSchema)

// ValidationError lists the schema violations of a proof configuration.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "proof configuration validation failed: " + strings.Join(e.Violations, "; ")
}

// ValidateProofConfig checks a proof or proof configuration against the
// Data Integrity proof shape.
func ValidateProofConfig(proof map[string]interface{}) error {
	if proof == nil {
		return &ValidationError{Violations: []string{"proof is nil"}}
	}

	result, err := gojsonschema.Validate(proofConfigSchemaLoader, gojsonschema.NewGoLoader(proof))
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			violations = append(violations, e.String())
		}
		return &ValidationError{Violations: violations}
	}
	return nil
}
