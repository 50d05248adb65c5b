// Package errors provides the error taxonomy used across idconnect.
//
// Callers distinguish failure classes with the Is* helpers rather than by
// matching message text: a transport failure means the provider was never
// reached, a protocol violation means it was reached but broke the contract.
package errors

import (
	"fmt"
)

// Error types
const (
	// ErrConfiguration is returned for missing or invalid client credentials,
	// a malformed callback URL, or an unknown/disabled provider.
	ErrConfiguration = "configuration"

	// ErrTransport is returned when the underlying connection could not
	// complete (DNS, TLS, timeout).
	ErrTransport = "transport"

	// ErrProtocolViolation is returned when the provider was reachable but
	// broke the contract: an HTTP status outside the accepted range, or a
	// response that decodes but lacks required fields.
	ErrProtocolViolation = "protocol_violation"

	// ErrStateMismatch is returned when the callback state nonce does not
	// match the persisted flow state. Always fatal to the flow attempt.
	ErrStateMismatch = "state_mismatch"

	// ErrUnsupportedCapability is returned when a provider does not implement
	// an optional capability such as contacts listing.
	ErrUnsupportedCapability = "unsupported_capability"
)

// Error represents an error in the application.
//
// Message must never contain raw secrets (tokens, client secrets); include
// endpoint and status detail instead.
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, cause error) *Error {
	return NewError(ErrConfiguration, message, cause)
}

// NewTransportError creates a new transport error
func NewTransportError(message string, cause error) *Error {
	return NewError(ErrTransport, message, cause)
}

// NewProtocolViolationError creates a new protocol violation error
func NewProtocolViolationError(message string, cause error) *Error {
	return NewError(ErrProtocolViolation, message, cause)
}

// NewStateMismatchError creates a new state mismatch error
func NewStateMismatchError(message string) *Error {
	return NewError(ErrStateMismatch, message, nil)
}

// NewUnsupportedCapabilityError creates a new unsupported capability error
func NewUnsupportedCapabilityError(message string) *Error {
	return NewError(ErrUnsupportedCapability, message, nil)
}

func isType(err error, errorType string) bool {
	e, ok := err.(*Error)
	return ok && e.Type == errorType
}

// IsConfiguration checks if the error is a configuration error
func IsConfiguration(err error) bool {
	return isType(err, ErrConfiguration)
}

// IsTransport checks if the error is a transport error
func IsTransport(err error) bool {
	return isType(err, ErrTransport)
}

// IsProtocolViolation checks if the error is a protocol violation error
func IsProtocolViolation(err error) bool {
	return isType(err, ErrProtocolViolation)
}

// IsStateMismatch checks if the error is a state mismatch error
func IsStateMismatch(err error) bool {
	return isType(err, ErrStateMismatch)
}

// IsUnsupportedCapability checks if the error is an unsupported capability error
func IsUnsupportedCapability(err error) bool {
	return isType(err, ErrUnsupportedCapability)
}
