package dataintegrity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/cryptosuite"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/dto"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/jsonmap"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/proofgraph"
)

const (
	proofA = "urn:uuid:3e3a2a0a-0f54-4a3d-9a8e-0a1d1a1e0001"
	proofB = "urn:uuid:3e3a2a0a-0f54-4a3d-9a8e-0a1d1a1e0002"
	proofC = "urn:uuid:3e3a2a0a-0f54-4a3d-9a8e-0a1d1a1e0003"
	proofD = "urn:uuid:3e3a2a0a-0f54-4a3d-9a8e-0a1d1a1e0004"
)

func resultIDs(result *VerificationResult) []string {
	ids := make([]string, len(result.Proofs))
	for i, p := range result.Proofs {
		ids[i] = p.ID
	}
	return ids
}

func proofEntry(doc jsonmap.JSONMap, i int) map[string]interface{} {
	return doc["proof"].([]interface{})[i].(map[string]interface{})
}

func TestAddProofSet(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(WithMaxParallel(2))

	requests := []SignRequest{
		{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{ID: proofA, Cryptosuite: cryptosuite.EdDSARDFC2022}},
		{Signer: newSigner(t, multikey.P256), Options: ProofOptions{ID: proofB, Cryptosuite: cryptosuite.ECDSARDFC2019}},
		{Signer: newSigner(t, multikey.P384), Options: ProofOptions{ID: proofC, Cryptosuite: cryptosuite.ECDSAJCS2019}},
	}
	secured, err := engine.AddProofSet(ctx, newDocument(t), requests)
	require.NoError(t, err)
	require.Len(t, proofsOf(t, secured), 3)

	result, err := engine.Verify(ctx, secured)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, []string{proofA, proofB, proofC}, resultIDs(result))

	// A set is added next to proofs that are already present.
	more, err := engine.AddProofSet(ctx, secured, []SignRequest{
		{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{ID: proofD, Cryptosuite: cryptosuite.EdDSAJCS2022}},
	})
	require.NoError(t, err)
	result, err = engine.Verify(ctx, more)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, []string{proofA, proofB, proofC, proofD}, resultIDs(result))

	// Proofs of a set are independent: breaking one leaves the others valid.
	tampered := secured.Clone()
	proofEntry(tampered, 1)["created"] = "2020-01-01T00:00:00Z"
	result, err = engine.Verify(ctx, tampered)
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.True(t, result.Proofs[0].Valid)
	assert.False(t, result.Proofs[1].Valid)
	assert.True(t, result.Proofs[2].Valid)
}

func TestAddProofSetFailsAsAWhole(t *testing.T) {
	engine := newTestEngine()
	doc := newDocument(t)

	_, err := engine.AddProofSet(context.Background(), doc, []SignRequest{
		{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{Cryptosuite: cryptosuite.EdDSARDFC2022}},
		{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{Cryptosuite: cryptosuite.ECDSAJCS2019}},
	})
	assert.ErrorIs(t, err, cryptosuite.ErrKeyMismatch)
	_, hasProof := doc["proof"]
	assert.False(t, hasProof)
}

func buildChain(t *testing.T, engine *Engine) jsonmap.JSONMap {
	t.Helper()
	ctx := context.Background()

	secured, err := engine.AddProofSet(ctx, newDocument(t), []SignRequest{
		{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{ID: proofA, Cryptosuite: cryptosuite.EdDSARDFC2022}},
		{Signer: newSigner(t, multikey.P256), Options: ProofOptions{ID: proofB, Cryptosuite: cryptosuite.ECDSARDFC2019}},
	})
	require.NoError(t, err)

	secured, err = engine.AddChainedProofs(ctx, secured, []SignRequest{
		{Signer: newSigner(t, multikey.P384), Options: ProofOptions{
			ID:            proofC,
			Cryptosuite:   cryptosuite.ECDSARDFC2019,
			PreviousProof: dto.PreviousProofList(proofA, proofB),
		}},
		{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{
			ID:            proofD,
			Cryptosuite:   cryptosuite.EdDSAJCS2022,
			PreviousProof: dto.SinglePreviousProof(proofC),
		}},
	})
	require.NoError(t, err)
	return secured
}

func TestProofChain(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine()
	secured := buildChain(t, engine)

	proofs := proofsOf(t, secured)
	require.Len(t, proofs, 4)
	assert.Equal(t, []interface{}{proofA, proofB}, proofs[2]["previousProof"])
	assert.Equal(t, proofC, proofs[3]["previousProof"])

	result, err := engine.Verify(ctx, secured)
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, []string{proofA, proofB, proofC, proofD}, resultIDs(result))
}

func TestProofChainInvalidDependency(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine()
	secured := buildChain(t, engine)

	// Replace B's signature with A's. C embeds B and breaks too; D embeds
	// only C, so its own signature holds but the chain does not.
	tampered := secured.Clone()
	proofEntry(tampered, 1)["proofValue"] = proofEntry(tampered, 0)["proofValue"]

	result, err := engine.Verify(ctx, tampered)
	require.NoError(t, err)
	assert.False(t, result.Verified)

	byID := make(map[string]ProofResult)
	for _, p := range result.Proofs {
		byID[p.ID] = p
	}
	assert.True(t, byID[proofA].Valid)
	assert.False(t, byID[proofB].SignatureValid)
	assert.False(t, byID[proofC].SignatureValid)
	assert.True(t, byID[proofD].SignatureValid)
	assert.False(t, byID[proofD].Valid)

	var mismatch *SignatureMismatchError
	require.True(t, errors.As(result.Err(), &mismatch))
	assert.Len(t, mismatch.Proofs, 3)
	assert.Contains(t, mismatch.Error(), proofB)
}

func TestProofChainReferenceOrderIsSigned(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine()
	signer := newSigner(t, multikey.P256)

	secured, err := engine.AddChainedProofs(ctx, newDocument(t), []SignRequest{
		{Signer: signer, Options: ProofOptions{ID: proofA, Cryptosuite: cryptosuite.ECDSAJCS2019}},
		{Signer: signer, Options: ProofOptions{ID: proofB, Cryptosuite: cryptosuite.ECDSAJCS2019}},
		{Signer: signer, Options: ProofOptions{
			ID:            proofC,
			Cryptosuite:   cryptosuite.ECDSAJCS2019,
			PreviousProof: dto.PreviousProofList(proofA, proofB),
		}},
	})
	require.NoError(t, err)

	result, err := engine.Verify(ctx, secured)
	require.NoError(t, err)
	require.True(t, result.Verified)

	tampered := secured.Clone()
	proofEntry(tampered, 2)["previousProof"] = []interface{}{proofB, proofA}

	result, err = engine.Verify(ctx, tampered)
	require.NoError(t, err)
	assert.True(t, result.Proofs[0].Valid)
	assert.True(t, result.Proofs[1].Valid)
	assert.False(t, result.Proofs[2].SignatureValid)
}

func TestProofChainDuplicateReferences(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine()

	for _, suite := range []string{cryptosuite.EdDSARDFC2022, cryptosuite.EdDSAJCS2022} {
		t.Run(suite, func(t *testing.T) {
			secured, err := engine.AddChainedProofs(ctx, newDocument(t), []SignRequest{
				{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{ID: proofA, Cryptosuite: suite}},
				{Signer: newSigner(t, multikey.Ed25519), Options: ProofOptions{
					ID:            proofB,
					Cryptosuite:   suite,
					PreviousProof: dto.PreviousProofList(proofA, proofA),
				}},
			})
			require.NoError(t, err)

			result, err := engine.Verify(ctx, secured)
			require.NoError(t, err)
			assert.True(t, result.Verified)
		})
	}
}

func TestChainedProofErrors(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine()
	signer := newSigner(t, multikey.Ed25519)

	t.Run("missing previous proof", func(t *testing.T) {
		secured, err := engine.AddProof(ctx, newDocument(t), signer, ProofOptions{ID: proofA})
		require.NoError(t, err)

		_, err = engine.AddChainedProofs(ctx, secured, []SignRequest{
			{Signer: signer, Options: ProofOptions{ID: proofB, PreviousProof: dto.PreviousProofList(proofA, proofD)}},
		})
		var missing *proofgraph.MissingProofError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, proofD, missing.Ref)
	})

	t.Run("unsigned previous proof", func(t *testing.T) {
		doc := newDocument(t)
		doc["proof"] = map[string]interface{}{
			"id":                 proofA,
			"type":               "DataIntegrityProof",
			"cryptosuite":        "eddsa-rdfc-2022",
			"created":            "2023-02-24T23:36:38Z",
			"verificationMethod": "did:key:z6MkrJVnaZkeFzdQyMZu1cgjg7k1pZZ6pvBQ7XJPt4swbTQ2#z6MkrJVnaZkeFzdQyMZu1cgjg7k1pZZ6pvBQ7XJPt4swbTQ2",
			"proofPurpose":       "assertionMethod",
		}
		_, err := engine.CreateProof(ctx, doc, signer, ProofOptions{PreviousProof: dto.SinglePreviousProof(proofA)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not signed")
	})
}

func rawProof(id string, previous interface{}) map[string]interface{} {
	p := map[string]interface{}{
		"id":                 id,
		"type":               "DataIntegrityProof",
		"cryptosuite":        "eddsa-jcs-2022",
		"created":            "2023-02-24T23:36:38Z",
		"verificationMethod": "did:key:z6MkrJVnaZkeFzdQyMZu1cgjg7k1pZZ6pvBQ7XJPt4swbTQ2#z6MkrJVnaZkeFzdQyMZu1cgjg7k1pZZ6pvBQ7XJPt4swbTQ2",
		"proofPurpose":       "assertionMethod",
		"proofValue":         "z5KTX5yikM4eUukZW9qh66LGT3KZEUCACGpWcT2t4Yd54N",
	}
	if previous != nil {
		p["previousProof"] = previous
	}
	return p
}

func TestVerifyProofGraphErrors(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine()

	t.Run("cycle", func(t *testing.T) {
		doc := newDocument(t)
		doc["proof"] = []interface{}{
			rawProof(proofA, proofC),
			rawProof(proofB, proofA),
			rawProof(proofC, proofB),
		}
		_, err := engine.Verify(ctx, doc)
		var cyclic *proofgraph.CyclicProofError
		require.True(t, errors.As(err, &cyclic))
		assert.Equal(t, []string{proofA, proofC, proofB, proofA}, cyclic.Path)
	})

	t.Run("missing", func(t *testing.T) {
		doc := newDocument(t)
		doc["proof"] = []interface{}{rawProof(proofA, nil), rawProof(proofB, []interface{}{proofA, proofD})}
		_, err := engine.Verify(ctx, doc)
		var missing *proofgraph.MissingProofError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, proofD, missing.Ref)
	})

	t.Run("numeric reference", func(t *testing.T) {
		doc := newDocument(t)
		doc["proof"] = []interface{}{rawProof("456321", nil), rawProof(proofB, float64(456321))}
		_, err := engine.Verify(ctx, doc)
		var missing *proofgraph.MissingProofError
		require.True(t, errors.As(err, &missing))
		assert.True(t, missing.NonString)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		doc := newDocument(t)
		doc["proof"] = []interface{}{rawProof(proofA, nil), rawProof(proofA, nil)}
		_, err := engine.Verify(ctx, doc)
		assert.ErrorIs(t, err, proofgraph.ErrDuplicateProofID)
	})
}
