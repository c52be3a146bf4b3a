// Package dataintegrity creates and verifies W3C Data Integrity proofs,
// including proof sets and proof chains linked through previousProof.
package dataintegrity

import (
	"context"
	stdcrypto "crypto"
	"fmt"
	"log/slog"
	"time"

	"github.com/multiformats/go-multibase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/canonicalizer"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/crypto"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/cryptosuite"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/dto"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/proofgraph"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/schema"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/util"
	verificationmethod "github.com/pilacorp/go-dataintegrity-sdk/credential/common/verification-method"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/config"
)

const fieldContext = "@context"

// Engine signs and verifies documents. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	canonicalizer  *canonicalizer.Canonicalizer
	resolver       verificationmethod.Resolver
	logger         *slog.Logger
	tracer         trace.Tracer
	now            func() time.Time
	maxParallel    int
	validateSchema bool
}

// New returns an Engine configured by opts.
func New(opts ...EngineOpt) *Engine {
	o := getOptions(opts...)
	return &Engine{
		canonicalizer:  canonicalizer.New(o.documentLoader),
		resolver:       o.resolver,
		logger:         o.logger,
		tracer:         o.tracer,
		now:            o.now,
		maxParallel:    o.maxParallel,
		validateSchema: o.isValidateSchema,
	}
}

// SignRequest pairs a signer with the options of the proof it produces.
type SignRequest struct {
	Signer  crypto.Signer
	Options ProofOptions
}

// CreateProof computes a proof over doc without attaching it. Proofs named
// by opts.PreviousProof must already be attached to doc and signed.
func (e *Engine) CreateProof(ctx context.Context, doc jsonmap.JSONMap, signer crypto.Signer, opts ProofOptions) (proof *dto.Proof, err error) {
	suiteID := opts.Cryptosuite
	if suiteID == "" {
		suiteID = config.Cryptosuite()
	}

	ctx, span := e.tracer.Start(ctx, "dataintegrity.CreateProof",
		trace.WithAttributes(attribute.String("cryptosuite", suiteID)))
	defer func() { endSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to create proof: document is nil")
	}
	if signer == nil {
		return nil, fmt.Errorf("failed to create proof: signer is nil")
	}

	suite, err := cryptosuite.Lookup(suiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}
	h, err := suite.Hash(signer.Algorithm())
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}

	newProof, err := e.newProof(suite, signer, opts)
	if err != nil {
		return nil, err
	}

	var deps []*proofgraph.Node
	if newProof.PreviousProof != nil {
		deps, err = e.previousProofs(doc, newProof.PreviousProof)
		if err != nil {
			return nil, err
		}
	}

	input, err := e.signingInput(suite, h, doc, util.SerializeProof(newProof), deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}

	signature, err := signer.Sign(input)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}
	newProof.ProofValue, err = multibase.Encode(multibase.Base58BTC, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proof value: %w", err)
	}

	e.logger.DebugContext(ctx, "proof created",
		"cryptosuite", newProof.Cryptosuite,
		"proof_id", newProof.ID,
		"verification_method", newProof.VerificationMethod)
	return &newProof, nil
}

func (e *Engine) newProof(suite cryptosuite.Descriptor, signer crypto.Signer, opts ProofOptions) (dto.Proof, error) {
	vm := opts.VerificationMethod
	if vm == "" {
		var err error
		vm, err = verificationmethod.DIDKeyURL(signer.PublicKey())
		if err != nil {
			return dto.Proof{}, fmt.Errorf("failed to create proof: %w", err)
		}
	}

	purpose := opts.ProofPurpose
	if purpose == "" {
		purpose = config.ProofPurpose()
	}

	created := opts.Created
	if created.IsZero() {
		created = e.now()
	}

	proof := dto.Proof{
		ID:                 opts.ID,
		Type:               cryptosuite.ProofType,
		Cryptosuite:        suite.ID,
		Created:            formatTime(created),
		VerificationMethod: vm,
		ProofPurpose:       purpose,
		PreviousProof:      opts.PreviousProof,
		Challenge:          opts.Challenge,
		Domain:             opts.Domain,
		Nonce:              opts.Nonce,
	}
	if !opts.Expires.IsZero() {
		proof.Expires = formatTime(opts.Expires)
	}
	return proof, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// previousProofs resolves ref against the proofs attached to doc. Every
// match must carry a proofValue.
func (e *Engine) previousProofs(doc jsonmap.JSONMap, ref *dto.PreviousProof) ([]*proofgraph.Node, error) {
	existing, err := doc.Proofs()
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}
	g, err := proofgraph.New(existing)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}
	deps, err := g.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}
	for _, dep := range deps {
		if dep.Proof.ProofValue == "" {
			return nil, fmt.Errorf("failed to create proof: previous proof %q is not signed", dep.Proof.ID)
		}
	}
	return deps, nil
}

// signingInput canonicalizes the proof configuration and the unsecured
// document, then combines their digests as the suite requires. The
// configuration map is modified.
func (e *Engine) signingInput(suite cryptosuite.Descriptor, h stdcrypto.Hash, doc jsonmap.JSONMap, proofConfig jsonmap.JSONMap, deps []*proofgraph.Node) ([]byte, error) {
	if e.validateSchema {
		if err := schema.ValidateProofConfig(proofConfig); err != nil {
			return nil, err
		}
	}

	var unsecured jsonmap.JSONMap
	if len(deps) == 0 {
		unsecured = doc.WithoutProof()
	} else {
		unsecured = doc.WithProofArray(util.MapSlice(deps, func(n *proofgraph.Node) jsonmap.JSONMap { return n.Raw }))
	}

	if suite.Canonicalization == canonicalizer.RDFC {
		if documentContext, ok := doc.Context(); ok {
			proofConfig[fieldContext] = documentContext
		}
	}

	proofCanon, err := e.canonicalizer.Canonicalize(proofConfig, suite.Canonicalization, h)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize proof configuration: %w", err)
	}
	docCanon, err := e.canonicalizer.Canonicalize(unsecured, suite.Canonicalization, h)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}
	return suite.SigningInput(proofCanon, docCanon, h), nil
}

// AddProof creates a proof and returns a copy of doc with it attached.
func (e *Engine) AddProof(ctx context.Context, doc jsonmap.JSONMap, signer crypto.Signer, opts ProofOptions) (jsonmap.JSONMap, error) {
	proof, err := e.CreateProof(ctx, doc, signer, opts)
	if err != nil {
		return nil, err
	}
	return doc.AttachProofs(util.SerializeProof(*proof))
}

// AddProofSet signs doc once per request, in parallel, and attaches the
// resulting independent proofs in request order. No request may reference
// another proof of the same set.
func (e *Engine) AddProofSet(ctx context.Context, doc jsonmap.JSONMap, requests []SignRequest) (secured jsonmap.JSONMap, err error) {
	ctx, span := e.tracer.Start(ctx, "dataintegrity.AddProofSet",
		trace.WithAttributes(attribute.Int("proofs", len(requests))))
	defer func() { endSpan(span, err) }()

	proofs := make([]jsonmap.JSONMap, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			proof, err := e.CreateProof(gctx, doc, req.Signer, req.Options)
			if err != nil {
				return fmt.Errorf("failed to create proof %d of set: %w", i, err)
			}
			proofs[i] = util.SerializeProof(*proof)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return doc.AttachProofs(proofs...)
}

// AddChainedProofs signs the requests one after another, attaching each
// proof before the next is computed, so later requests may reference
// earlier ones through previousProof.
func (e *Engine) AddChainedProofs(ctx context.Context, doc jsonmap.JSONMap, requests []SignRequest) (secured jsonmap.JSONMap, err error) {
	ctx, span := e.tracer.Start(ctx, "dataintegrity.AddChainedProofs",
		trace.WithAttributes(attribute.Int("proofs", len(requests))))
	defer func() { endSpan(span, err) }()

	secured = doc.Clone()
	for i, req := range requests {
		secured, err = e.AddProof(ctx, secured, req.Signer, req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to add proof %d of chain: %w", i, err)
		}
	}
	return secured, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
