// Package errs defines the caller-facing error taxonomy for the bridge
// aggregation core. Every error surfaced to the orchestration layer carries a
// machine-readable kind and a human-readable message; internal causes are
// wrapped for logging but never serialized.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind string

// Error kinds surfaced to callers
const (
	KindValidation          Kind = "validation"
	KindUnknownChain        Kind = "unknown_chain"
	KindUnsupportedProtocol Kind = "unsupported_protocol"
	KindAdapter             Kind = "adapter_error"
	KindNoRoute             Kind = "no_route"
)

// Error is the caller-facing error type.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`

	// Field names the offending request field for validation errors.
	Field string `json:"field,omitempty"`

	// cause is the wrapped internal error, kept for logs only.
	cause error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the internal cause to errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Validation reports a malformed or missing request field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// UnknownChain reports a chain name with no registry entry.
func UnknownChain(name string) *Error {
	return &Error{Kind: KindUnknownChain, Message: fmt.Sprintf("unknown chain %q", name)}
}

// UnsupportedProtocol reports a protocol with no registered adapter.
func UnsupportedProtocol(protocol string) *Error {
	return &Error{Kind: KindUnsupportedProtocol, Message: fmt.Sprintf("unsupported protocol %q", protocol)}
}

// Adapter reports a failed adapter query. The raw adapter error is wrapped
// for logging; the message stays generic so no upstream detail leaks out.
func Adapter(protocol string, cause error) *Error {
	return &Error{
		Kind:    KindAdapter,
		Message: fmt.Sprintf("bridge protocol %q is currently unavailable", protocol),
		cause:   cause,
	}
}

// NoRoute reports that no adapter produced an eligible route.
func NoRoute() *Error {
	return &Error{Kind: KindNoRoute, Message: "no bridge route available for this transfer"}
}

// KindOf extracts the kind from an error chain, or the empty Kind for
// errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
