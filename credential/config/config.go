package config

import (
	"os"
	"strconv"
)

// Default values
const (
	DefaultProofPurpose = "assertionMethod"
	DefaultCryptosuite  = "eddsa-rdfc-2022"
	DefaultMaxParallel  = 4
)

// Environment variable names
const (
	EnvProofPurpose = "DI_PROOF_PURPOSE"
	EnvCryptosuite  = "DI_CRYPTOSUITE"
	EnvMaxParallel  = "DI_MAX_PARALLEL"
)

// ProofPurpose returns the proof purpose from environment variable or default value
func ProofPurpose() string {
	if purpose := os.Getenv(EnvProofPurpose); purpose != "" {
		return purpose
	}
	return DefaultProofPurpose
}

// Cryptosuite returns the cryptosuite identifier from environment variable or default value
func Cryptosuite() string {
	if suite := os.Getenv(EnvCryptosuite); suite != "" {
		return suite
	}
	return DefaultCryptosuite
}

// MaxParallel returns how many proofs may be signed or verified at once.
// Values below 1 fall back to the default.
func MaxParallel() int {
	if s := os.Getenv(EnvMaxParallel); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxParallel
}
