// Package canonicalizer turns a JSON-LD document into a deterministic byte
// string, either through RDF Dataset Canonicalization (RDFC-1.0) with a
// pluggable hash function or through the JSON Canonicalization Scheme.
package canonicalizer

import (
	"crypto"
	"encoding/json"
	"fmt"

	"github.com/piprate/json-gold/ld"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/loader"
)

// Algorithm selects a canonicalization scheme.
type Algorithm string

const (
	RDFC Algorithm = "RDFC-1.0"
	JCS  Algorithm = "JCS"
)

// Canonicalizer produces canonical forms of JSON-LD nodes. A zero value is
// not usable; construct one with New.
type Canonicalizer struct {
	loader ld.DocumentLoader
}

// New returns a Canonicalizer resolving contexts through documentLoader, or
// through the built-in static loader when documentLoader is nil.
func New(documentLoader ld.DocumentLoader) *Canonicalizer {
	if documentLoader == nil {
		documentLoader = loader.NewStaticLoader()
	}
	return &Canonicalizer{loader: documentLoader}
}

// Canonicalize returns the canonical form of node. For RDFC the hash drives
// blank node labelling; JCS ignores it.
func (c *Canonicalizer) Canonicalize(node map[string]interface{}, alg Algorithm, h crypto.Hash) ([]byte, error) {
	if node == nil {
		return nil, &CanonicalizationError{Algorithm: alg, Err: fmt.Errorf("document is nil")}
	}

	doc, err := standardize(node)
	if err != nil {
		return nil, &CanonicalizationError{Algorithm: alg, Err: err}
	}

	switch alg {
	case RDFC:
		return c.canonicalizeRDF(doc, h)
	case JCS:
		return canonicalizeJCS(doc)
	default:
		return nil, &CanonicalizationError{Algorithm: alg, Err: fmt.Errorf("unsupported canonicalization algorithm")}
	}
}

func (c *Canonicalizer) canonicalizeRDF(doc map[string]interface{}, h crypto.Hash) ([]byte, error) {
	if !h.Available() {
		return nil, &CanonicalizationError{Algorithm: RDFC, Err: fmt.Errorf("hash function %v is not available", h)}
	}

	recorder := &recordingLoader{next: c.loader}
	dataset, err := toDataset(doc, recorder)
	if err != nil {
		if recorder.err != nil {
			err = recorder.err
		}
		return nil, &CanonicalizationError{Algorithm: RDFC, Err: err}
	}

	return []byte(canonicalizeDataset(dataset, h)), nil
}

// toDataset expands doc and converts it to an RDF dataset.
func toDataset(doc map[string]interface{}, documentLoader ld.DocumentLoader) ([]quad, error) {
	processor := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")
	options.ProcessingMode = ld.JsonLd_1_1
	options.DocumentLoader = documentLoader

	rdf, err := processor.ToRDF(doc, options)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document to RDF: %w", err)
	}
	dataset, ok := rdf.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("failed to convert document to RDF: unexpected result type %T", rdf)
	}
	return fromDataset(dataset), nil
}

// standardize round-trips node through encoding/json so that Go-native
// slices and structs become the generic shapes json-gold expects. The result
// is an independent copy.
func standardize(node map[string]interface{}) (map[string]interface{}, error) {
	encoded, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// recordingLoader keeps the first loader failure so it can be surfaced
// instead of json-gold's generic remote-context error.
type recordingLoader struct {
	next ld.DocumentLoader
	err  error
}

func (r *recordingLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	doc, err := r.next.LoadDocument(u)
	if err != nil && r.err == nil {
		r.err = err
	}
	return doc, err
}

// CanonicalizationError wraps any failure while producing a canonical form,
// including context loading failures.
type CanonicalizationError struct {
	Algorithm Algorithm
	Err       error
}

func (e *CanonicalizationError) Error() string {
	return fmt.Sprintf("failed to canonicalize document with %s: %v", e.Algorithm, e.Err)
}

func (e *CanonicalizationError) Unwrap() error {
	return e.Err
}
