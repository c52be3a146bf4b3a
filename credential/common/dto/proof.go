package dto

// Proof represents a Data Integrity proof attached to a document.
type Proof struct {
	ID                 string         `json:"id,omitempty"`
	Type               string         `json:"type"`
	Cryptosuite        string         `json:"cryptosuite,omitempty"`
	Created            string         `json:"created"`
	Expires            string         `json:"expires,omitempty"`
	VerificationMethod string         `json:"verificationMethod"`
	ProofPurpose       string         `json:"proofPurpose"`
	PreviousProof      *PreviousProof `json:"previousProof,omitempty"`
	Challenge          string         `json:"challenge,omitempty"`
	Domain             string         `json:"domain,omitempty"`
	Nonce              string         `json:"nonce,omitempty"`
	ProofValue         string         `json:"proofValue,omitempty"`
}
