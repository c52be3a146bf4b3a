package loader

import _ "embed"

// Context URLs served by the static loader.
const (
	CredentialsV1URL   = "https://www.w3.org/2018/credentials/v1"
	CredentialsV2URL   = "https://www.w3.org/ns/credentials/v2"
	DataIntegrityV2URL = "https://w3id.org/security/data-integrity/v2"
	ExamplesV2URL      = "https://www.w3.org/ns/credentials/examples/v2"
	MultikeyV1URL      = "https://w3id.org/security/multikey/v1"
)

//go:embed contexts/credentials-v1.jsonld
var credentialsV1 []byte

//go:embed contexts/credentials-v2.jsonld
var credentialsV2 []byte

//go:embed contexts/data-integrity-v2.jsonld
var dataIntegrityV2 []byte

//go:embed contexts/examples-v2.jsonld
var examplesV2 []byte

//go:embed contexts/multikey-v1.jsonld
var multikeyV1 []byte

// builtinContexts returns a fresh URL to document table. The embedded
// slices are shared and never written.
func builtinContexts() map[string][]byte {
	return map[string][]byte{
		CredentialsV1URL:   credentialsV1,
		CredentialsV2URL:   credentialsV2,
		DataIntegrityV2URL: dataIntegrityV2,
		ExamplesV2URL:      examplesV2,
		MultikeyV1URL:      multikeyV1,
	}
}
