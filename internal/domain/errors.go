package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrTransport indicates the provider was unreachable or answered with a non-success status
	ErrTransport = errors.New("flight provider request failed")

	// ErrParse indicates a provider response was missing expected fields
	ErrParse = errors.New("flight provider response is malformed")

	// ErrPersistence indicates the durable store could not be read or written
	ErrPersistence = errors.New("durable store unavailable")

	// ErrValidation indicates invalid caller input
	ErrValidation = errors.New("invalid input")
)
