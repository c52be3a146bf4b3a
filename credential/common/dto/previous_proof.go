package dto

import (
	"encoding/json"
	"fmt"
)

// PreviousProof is the value of a proof's previousProof field: either a
// single reference or a list of references. References are kept exactly as
// decoded so that non-string values never compare equal to string ids.
type PreviousProof struct {
	refs []interface{}
	list bool
}

// SinglePreviousProof references one proof by id.
func SinglePreviousProof(id string) *PreviousProof {
	return &PreviousProof{refs: []interface{}{id}}
}

// PreviousProofList references several proofs by id, in order.
func PreviousProofList(ids ...string) *PreviousProof {
	refs := make([]interface{}, len(ids))
	for i, id := range ids {
		refs[i] = id
	}
	return &PreviousProof{refs: refs, list: true}
}

// ParsePreviousProof builds a PreviousProof from a decoded JSON value.
// Scalars other than strings are accepted and kept so that resolution can
// report them.
func ParsePreviousProof(v interface{}) (*PreviousProof, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("failed to parse previousProof: value is null")
	case []interface{}:
		refs := make([]interface{}, 0, len(val))
		for i, item := range val {
			if !isScalar(item) {
				return nil, fmt.Errorf("failed to parse previousProof: entry %d must be a scalar, got %T", i, item)
			}
			refs = append(refs, item)
		}
		return &PreviousProof{refs: refs, list: true}, nil
	case []string:
		return PreviousProofList(val...), nil
	default:
		if !isScalar(val) {
			return nil, fmt.Errorf("failed to parse previousProof: unsupported value of type %T", v)
		}
		return &PreviousProof{refs: []interface{}{val}}, nil
	}
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, float64, float32, int, int64, int32, uint, uint64, uint32, bool, json.Number:
		return true
	default:
		return false
	}
}

// Refs returns the references in declaration order.
func (p *PreviousProof) Refs() []interface{} {
	if p == nil {
		return nil
	}
	return p.refs
}

// IsList reports whether the value was declared as an array.
func (p *PreviousProof) IsList() bool {
	return p != nil && p.list
}

// Value returns the JSON-compatible value: a scalar or an array.
func (p *PreviousProof) Value() interface{} {
	if p == nil {
		return nil
	}
	if !p.list && len(p.refs) == 1 {
		return p.refs[0]
	}
	out := make([]interface{}, len(p.refs))
	copy(out, p.refs)
	return out
}

// MarshalJSON preserves the single or list shape.
func (p *PreviousProof) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value())
}

// UnmarshalJSON accepts a scalar or an array of scalars.
func (p *PreviousProof) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse previousProof: %w", err)
	}
	parsed, err := ParsePreviousProof(raw)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}
