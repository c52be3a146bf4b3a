package verificationmethod

import (
	"context"
	"fmt"
	"strings"

	"github.com/pilacorp/go-dataintegrity-sdk/credential/common/multikey"
)

const didKeyPrefix = "did:key:"

// Resolver maps a verificationMethod URI to the public key it identifies.
type Resolver interface {
	PublicKey(ctx context.Context, verificationMethod string) (multikey.KeyMaterial, error)
}

// FragmentResolver reads the public key from the URI fragment, which must be
// a public Multikey. It never performs network lookups.
type FragmentResolver struct{}

// NewResolver returns the default fragment based resolver.
func NewResolver() *FragmentResolver {
	return &FragmentResolver{}
}

// PublicKey implements Resolver.
func (FragmentResolver) PublicKey(_ context.Context, verificationMethod string) (multikey.KeyMaterial, error) {
	return PublicKeyFromURL(verificationMethod)
}

// PublicKeyFromURL decodes the Multikey found after the first '#'.
func PublicKeyFromURL(verificationMethod string) (multikey.KeyMaterial, error) {
	if verificationMethod == "" {
		return multikey.KeyMaterial{}, fmt.Errorf("verification method is empty")
	}

	_, fragment, found := strings.Cut(verificationMethod, "#")
	if !found || fragment == "" {
		return multikey.KeyMaterial{}, fmt.Errorf("invalid verification method URL, missing key fragment: %s", verificationMethod)
	}

	key, err := multikey.Decode(fragment)
	if err != nil {
		return multikey.KeyMaterial{}, fmt.Errorf("failed to decode key of verification method '%s': %w", verificationMethod, err)
	}
	if key.Private {
		return multikey.KeyMaterial{}, fmt.Errorf("verification method '%s' carries a private key", verificationMethod)
	}
	return key, nil
}

// DIDKeyURL returns the did:key verification method for a public key, in
// the form did:key:<multikey>#<multikey>.
func DIDKeyURL(public multikey.KeyMaterial) (string, error) {
	if public.Private {
		return "", fmt.Errorf("failed to build did:key: key is not a public key")
	}
	encoded, err := multikey.Encode(public)
	if err != nil {
		return "", fmt.Errorf("failed to build did:key: %w", err)
	}
	return didKeyPrefix + encoded + "#" + encoded, nil
}
