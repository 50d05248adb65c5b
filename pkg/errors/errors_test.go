package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTransport,
				Message: "token endpoint unreachable",
				Cause:   errors.New("dial tcp: i/o timeout"),
			},
			want: "transport: token endpoint unreachable: dial tcp: i/o timeout",
		},
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrStateMismatch,
				Message: "callback state does not match stored value",
				Cause:   nil,
			},
			want: "state_mismatch: callback state does not match stored value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransportError("refresh call failed", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		want      bool
	}{
		{"configuration", NewConfigurationError("unknown provider", nil), IsConfiguration, true},
		{"transport", NewTransportError("dns failure", nil), IsTransport, true},
		{"protocol violation", NewProtocolViolationError("missing access_token", nil), IsProtocolViolation, true},
		{"state mismatch", NewStateMismatchError("nonce differs"), IsStateMismatch, true},
		{"unsupported capability", NewUnsupportedCapabilityError("contacts not supported"), IsUnsupportedCapability, true},
		{"wrong type", NewTransportError("dns failure", nil), IsStateMismatch, false},
		{"plain error", errors.New("plain"), IsTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.predicate(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}
