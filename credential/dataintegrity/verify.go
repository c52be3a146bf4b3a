package dataintegrity

import (
	"context"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/crypto"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/cryptosuite"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/proofgraph"
)

const fieldProofValue = "proofValue"

// ErrNoProof is returned when verifying a document without proofs.
var ErrNoProof = errors.New("document has no proof")

// ProofResult is the outcome for one attached proof.
type ProofResult struct {
	// Index is the position of the proof in the document.
	Index              int
	ID                 string
	Cryptosuite        string
	VerificationMethod string
	// SignatureValid reports whether the proof's own signature verifies.
	SignatureValid bool
	// Valid additionally requires every proof it depends on to be valid.
	Valid bool
}

func (r ProofResult) label() string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("#%d", r.Index)
}

// VerificationResult lists one ProofResult per attached proof, in document
// order.
type VerificationResult struct {
	Verified bool
	Proofs   []ProofResult
}

// Err returns a *SignatureMismatchError naming the invalid proofs, or nil
// when every proof is valid.
func (r *VerificationResult) Err() error {
	if r.Verified {
		return nil
	}
	var failed []ProofResult
	for _, p := range r.Proofs {
		if !p.Valid {
			failed = append(failed, p)
		}
	}
	return &SignatureMismatchError{Proofs: failed}
}

// Verify checks every proof attached to doc. Proofs are verified level by
// level so that each proof's dependencies are settled first; proofs within
// a level run in parallel. A missing or cyclic previousProof reference
// aborts verification with an error, while an invalid signature is reported
// in the result.
func (e *Engine) Verify(ctx context.Context, doc jsonmap.JSONMap) (result *VerificationResult, err error) {
	ctx, span := e.tracer.Start(ctx, "dataintegrity.Verify")
	defer func() { endSpan(span, err) }()

	if doc == nil {
		return nil, fmt.Errorf("failed to verify: document is nil")
	}
	proofs, err := doc.Proofs()
	if err != nil {
		return nil, fmt.Errorf("failed to verify: %w", err)
	}
	if len(proofs) == 0 {
		return nil, ErrNoProof
	}

	graph, err := proofgraph.New(proofs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify: %w", err)
	}
	levels, err := graph.Levels()
	if err != nil {
		return nil, fmt.Errorf("failed to verify: %w", err)
	}
	span.SetAttributes(attribute.Int("proofs", len(proofs)), attribute.Int("levels", len(levels)))

	results := make([]ProofResult, len(proofs))
	for _, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.maxParallel)
		for _, n := range level {
			n := n
			g.Go(func() error {
				res, err := e.verifyNode(gctx, doc, graph, n)
				if err != nil {
					return err
				}
				// Dependencies live in earlier levels and are final.
				deps, err := graph.Dependencies(n)
				if err != nil {
					return err
				}
				res.Valid = res.SignatureValid
				for _, dep := range deps {
					if !results[dep.Index].Valid {
						res.Valid = false
					}
				}
				results[n.Index] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	result = &VerificationResult{Verified: true, Proofs: results}
	for _, r := range results {
		if !r.Valid {
			result.Verified = false
			e.logger.WarnContext(ctx, "proof failed verification",
				"cryptosuite", r.Cryptosuite,
				"proof_id", r.ID,
				"verification_method", r.VerificationMethod,
				"signature_valid", r.SignatureValid)
		}
	}
	return result, nil
}

// VerifyProof checks the signature of a single proof over doc, resolving
// its previousProof against the proofs attached to doc. It does not check
// the referenced proofs themselves.
func (e *Engine) VerifyProof(ctx context.Context, doc jsonmap.JSONMap, proof jsonmap.JSONMap) (valid bool, err error) {
	ctx, span := e.tracer.Start(ctx, "dataintegrity.VerifyProof")
	defer func() { endSpan(span, err) }()

	if doc == nil || proof == nil {
		return false, fmt.Errorf("failed to verify proof: document and proof are required")
	}
	existing, err := doc.Proofs()
	if err != nil {
		return false, fmt.Errorf("failed to verify proof: %w", err)
	}
	graph, err := proofgraph.New(existing)
	if err != nil {
		return false, fmt.Errorf("failed to verify proof: %w", err)
	}
	target, err := proofgraph.New([]jsonmap.JSONMap{proof})
	if err != nil {
		return false, fmt.Errorf("failed to verify proof: %w", err)
	}

	res, err := e.verifyNode(ctx, doc, graph, target.Nodes()[0])
	if err != nil {
		return false, err
	}
	return res.SignatureValid, nil
}

// verifyNode checks the signature of n. Its previousProof is resolved in
// graph, which does not have to contain n.
func (e *Engine) verifyNode(ctx context.Context, doc jsonmap.JSONMap, graph *proofgraph.Graph, n *proofgraph.Node) (ProofResult, error) {
	res := ProofResult{
		Index:              n.Index,
		ID:                 n.Proof.ID,
		Cryptosuite:        n.Proof.Cryptosuite,
		VerificationMethod: n.Proof.VerificationMethod,
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	ctx, span := e.tracer.Start(ctx, "dataintegrity.verifyProof", trace.WithAttributes(
		attribute.String("cryptosuite", res.Cryptosuite),
		attribute.String("proof_id", res.ID)))
	defer span.End()

	if n.Proof.Type != cryptosuite.ProofType {
		return res, fmt.Errorf("failed to verify proof %s: unsupported proof type %q", res.label(), n.Proof.Type)
	}
	suite, err := cryptosuite.Lookup(n.Proof.Cryptosuite)
	if err != nil {
		return res, fmt.Errorf("failed to verify proof %s: %w", res.label(), err)
	}
	publicKey, err := e.resolver.PublicKey(ctx, n.Proof.VerificationMethod)
	if err != nil {
		return res, fmt.Errorf("failed to verify proof %s: %w", res.label(), err)
	}
	h, err := suite.Hash(publicKey.Algorithm)
	if err != nil {
		return res, fmt.Errorf("failed to verify proof %s: %w", res.label(), err)
	}

	// An undecodable proofValue is an invalid signature, not a fault.
	encoding, signature, err := multibase.Decode(n.Proof.ProofValue)
	if err != nil || encoding != multibase.Base58BTC {
		e.logger.DebugContext(ctx, "proof value is not base58btc multibase", "proof_id", res.ID)
		return res, nil
	}

	var deps []*proofgraph.Node
	if n.Proof.PreviousProof != nil {
		deps, err = graph.Resolve(n.Proof.PreviousProof)
		if err != nil {
			return res, fmt.Errorf("failed to verify proof %s: %w", res.label(), err)
		}
	}

	proofConfig := n.Raw.Clone()
	delete(proofConfig, fieldProofValue)
	input, err := e.signingInput(suite, h, doc, proofConfig, deps)
	if err != nil {
		return res, fmt.Errorf("failed to verify proof %s: %w", res.label(), err)
	}

	res.SignatureValid, err = crypto.Verify(signature, input, publicKey)
	if err != nil {
		return res, fmt.Errorf("failed to verify proof %s: %w", res.label(), err)
	}
	e.logger.DebugContext(ctx, "proof verified",
		"cryptosuite", res.Cryptosuite,
		"proof_id", res.ID,
		"verification_method", res.VerificationMethod,
		"signature_valid", res.SignatureValid)
	return res, nil
}
