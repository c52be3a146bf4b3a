package dataintegrity

import (
	"log/slog"
	"time"

	"github.com/piprate/json-gold/ld"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/dto"
	verificationmethod "github.com/pilacorp/go-dataintegrity-sdk/credential/common/verification-method"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/config"
)

const instrumentationName = "github.com/pilacorp/go-dataintegrity-sdk/credential/dataintegrity"

// EngineOpt configures an Engine.
type EngineOpt func(*engineOptions)

// engineOptions holds configuration for proof processing.
type engineOptions struct {
	documentLoader   ld.DocumentLoader
	resolver         verificationmethod.Resolver
	logger           *slog.Logger
	tracer           trace.Tracer
	now              func() time.Time
	maxParallel      int
	isValidateSchema bool
}

// WithDocumentLoader sets the loader used to resolve JSON-LD contexts during
// RDF canonicalization (default: the built-in static loader).
func WithDocumentLoader(documentLoader ld.DocumentLoader) EngineOpt {
	return func(o *engineOptions) {
		o.documentLoader = documentLoader
	}
}

// WithResolver sets how verification methods are turned into public keys.
func WithResolver(resolver verificationmethod.Resolver) EngineOpt {
	return func(o *engineOptions) {
		o.resolver = resolver
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOpt {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) EngineOpt {
	return func(o *engineOptions) {
		o.tracer = tracer
	}
}

// WithClock sets the time source for the created field of new proofs.
func WithClock(now func() time.Time) EngineOpt {
	return func(o *engineOptions) {
		o.now = now
	}
}

// WithMaxParallel limits how many proofs are signed or verified at once.
func WithMaxParallel(n int) EngineOpt {
	return func(o *engineOptions) {
		o.maxParallel = n
	}
}

// WithSchemaValidation enables JSON Schema validation of proof configurations.
func WithSchemaValidation() EngineOpt {
	return func(o *engineOptions) {
		o.isValidateSchema = true
	}
}

func getOptions(opts ...EngineOpt) *engineOptions {
	options := &engineOptions{
		resolver:    verificationmethod.NewResolver(),
		logger:      slog.Default().With("component", "dataintegrity"),
		tracer:      otel.Tracer(instrumentationName),
		now:         time.Now,
		maxParallel: config.MaxParallel(),
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.maxParallel < 1 {
		options.maxParallel = 1
	}
	return options
}

// ProofOptions describes the proof to create. Zero values fall back to the
// engine defaults.
type ProofOptions struct {
	// Cryptosuite defaults to config.Cryptosuite().
	Cryptosuite string
	// VerificationMethod defaults to the did:key URL of the signer's public key.
	VerificationMethod string
	// ProofPurpose defaults to config.ProofPurpose().
	ProofPurpose string
	// Created defaults to the engine clock.
	Created time.Time
	Expires time.Time

	ID            string
	PreviousProof *dto.PreviousProof
	Challenge     string
	Domain        string
	Nonce         string
}
