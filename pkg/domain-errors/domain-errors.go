package domainerrors

import (
	"errors"

	protocol "agegate/contracts/protocol"
)

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in protocol terms, not HTTP terms.
type Code string

const (
	// Protocol codes with a fixed numeric identity (see Numeric). The numbering
	// is part of the external contract and must not change.
	CodeNotAuthorized         Code = "not_authorized"
	CodeNotFound              Code = "verification_not_found"
	CodeAlreadyVerified       Code = "already_verified"
	CodeInvalidProof          Code = "invalid_proof"
	CodeVerifierNotAuthorized Code = "verifier_not_authorized"
	CodeExpired               Code = "verification_expired"
	CodeInvalidInput          Code = "invalid_age"
	CodeTransferFailed        Code = "transfer_failed"

	// Internal codes without a numeric identity; never part of the wire contract.
	CodeInternal    Code = "internal_error"
	CodeUnavailable Code = "unavailable"
)

// Numeric returns the external numeric code for a protocol error code, or 0 for
// internal codes that have no wire identity.
func (c Code) Numeric() int {
	switch c {
	case CodeNotAuthorized:
		return protocol.CodeNotAuthorized
	case CodeNotFound:
		return protocol.CodeVerificationNotFound
	case CodeAlreadyVerified:
		return protocol.CodeAlreadyVerified
	case CodeInvalidProof:
		return protocol.CodeInvalidProof
	case CodeVerifierNotAuthorized:
		return protocol.CodeVerifierNotAuthorized
	case CodeExpired:
		return protocol.CodeVerificationExpired
	case CodeInvalidInput:
		return protocol.CodeInvalidAge
	case CodeTransferFailed:
		return protocol.CodeTransferFailed
	default:
		return 0
	}
}

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
