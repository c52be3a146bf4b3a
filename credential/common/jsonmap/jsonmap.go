package jsonmap

import (
	"encoding/json"
	"fmt"
)

const fieldProof = "proof"

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

// ParseJSON decodes a JSON object.
func ParseJSON(data []byte) (JSONMap, error) {
	var m JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSONMap: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("failed to unmarshal JSONMap: document is null")
	}
	return m, nil
}

// ToJSON serializes the JSONMap to JSON.
func (m JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the map.
func (m JSONMap) Clone() JSONMap {
	if m == nil {
		return nil
	}
	return cloneValue(map[string]interface{}(m)).(map[string]interface{})
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case JSONMap:
		return JSONMap(cloneValue(map[string]interface{}(val)).(map[string]interface{}))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	default:
		return val
	}
}

// WithoutProof returns a deep copy of the map with the proof field removed.
func (m JSONMap) WithoutProof() JSONMap {
	c := m.Clone()
	delete(c, fieldProof)
	return c
}

// Context returns the @context value, if any.
func (m JSONMap) Context() (interface{}, bool) {
	ctx, ok := m["@context"]
	return ctx, ok
}

// Proofs returns the attached proofs in document order. A single proof
// object is returned as a one-element slice.
func (m JSONMap) Proofs() ([]JSONMap, error) {
	raw, exists := m[fieldProof]
	if !exists || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		return []JSONMap{v}, nil
	case JSONMap:
		return []JSONMap{v}, nil
	case []map[string]interface{}:
		out := make([]JSONMap, len(v))
		for i, p := range v {
			out[i] = p
		}
		return out, nil
	case []JSONMap:
		return v, nil
	case []interface{}:
		out := make([]JSONMap, 0, len(v))
		for i, item := range v {
			switch p := item.(type) {
			case map[string]interface{}:
				out = append(out, p)
			case JSONMap:
				out = append(out, p)
			default:
				return nil, fmt.Errorf("failed to read proofs: entry %d must be an object, got %T", i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("failed to read proofs: proof must be an object or array, got %T", raw)
	}
}

// AttachProofs returns a deep copy of the map with proofs appended to any
// existing ones. One resulting proof is stored as an object, several as an
// array.
func (m JSONMap) AttachProofs(proofs ...JSONMap) (JSONMap, error) {
	existing, err := m.Proofs()
	if err != nil {
		return nil, err
	}

	c := m.Clone()
	all := make([]interface{}, 0, len(existing)+len(proofs))
	for _, p := range existing {
		all = append(all, cloneValue(map[string]interface{}(p)))
	}
	for _, p := range proofs {
		all = append(all, cloneValue(map[string]interface{}(p)))
	}

	switch len(all) {
	case 0:
		delete(c, fieldProof)
	case 1:
		c[fieldProof] = all[0]
	default:
		c[fieldProof] = all
	}
	return c, nil
}

// WithProofArray returns a deep copy of the map whose proof field is exactly
// the given proofs as an array.
func (m JSONMap) WithProofArray(proofs []JSONMap) JSONMap {
	c := m.WithoutProof()
	arr := make([]interface{}, len(proofs))
	for i, p := range proofs {
		arr[i] = cloneValue(map[string]interface{}(p))
	}
	c[fieldProof] = arr
	return c
}
