package crypto

// VerificationError reports verification input that could not be used, such
// as a public key of the wrong length. An invalid signature is not an error.
type VerificationError struct {
	Reason string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return "failed to verify signature: " + e.Reason + ": " + e.Err.Error()
	}
	return "failed to verify signature: " + e.Reason
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
