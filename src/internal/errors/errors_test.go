package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "error without cause",
			err:      &Error{Code: ErrCodeConfig, Message: "invalid configuration"},
			expected: "[CONFIG_ERROR] invalid configuration",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeSource, "failed to read leases", errors.New("permission denied")),
			expected: "[SOURCE_ERROR] failed to read leases: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "wrapper", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestError_Is(t *testing.T) {
	err1 := &Error{Code: ErrCodeConfig, Message: "test error"}
	err2 := &Error{Code: ErrCodeConfig, Message: "another error"}
	err3 := &Error{Code: ErrCodeSource, Message: "source error"}

	if !err1.Is(err2) {
		t.Errorf("Expected errors with same code to match")
	}

	if err1.Is(err3) {
		t.Errorf("Expected errors with different codes to not match")
	}

	if !errors.Is(fmt.Errorf("outer: %w", err1), New(ErrCodeConfig, "")) {
		t.Errorf("Expected errors.Is to see through fmt wrapping")
	}
}

func TestHasCode(t *testing.T) {
	lookup := NewLookupError("no A record", nil)
	chain := NewSourceError("kea", fmt.Errorf("fill: %w", lookup))

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"outer code", chain, ErrCodeSource, true},
		{"nested code", chain, ErrCodeLookup, true},
		{"absent code", chain, ErrCodeConfig, false},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSourceError(t *testing.T) {
	cause := errors.New("file not found")
	err := NewSourceError("failed to load inventory", cause)

	if err.Code != ErrCodeSource {
		t.Errorf("Expected code %v, got %v", ErrCodeSource, err.Code)
	}

	if err.Message != "failed to load inventory" {
		t.Errorf("Expected message 'failed to load inventory', got %v", err.Message)
	}

	if err.Cause != cause {
		t.Errorf("Expected cause to be preserved")
	}
}
