package engine

import "errors"

// Sentinel errors surfaced to the CLI for remediation-specific messages.
var (
	// ErrNoSnapshot means an operation that requires env.lock found none.
	ErrNoSnapshot = errors.New("no env.lock found")

	// ErrDriftDetected means verification found error-severity findings.
	ErrDriftDetected = errors.New("environment drift detected")

	// ErrInvalidCategory means an unrecognized check category was requested.
	ErrInvalidCategory = errors.New("invalid check category")
)
