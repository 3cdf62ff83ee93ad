package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("KV-TEST-1000", "test message"),
			expected: "[KV-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("KV-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[KV-TEST-1001] test message: extra info",
		},
		{
			name:     "error with cause",
			err:      ErrStore.WithCause(fmt.Errorf("connection reset")),
			expected: "[KV-STORE-5020] store command failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("KV-TEST-1000", "message 1")
	err2 := NewDomainError("KV-TEST-1000", "message 2")
	err3 := NewDomainError("KV-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("KV-TEST-1000", "wrapper").WithCause(cause)

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	errNoCause := NewDomainError("KV-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_CopiesDoNotMutate(t *testing.T) {
	original := NewDomainError("KV-TEST-1000", "original message")
	_ = original.WithDetails("details")
	_ = original.WithCause(fmt.Errorf("cause"))

	if original.Details != "" || original.Cause != nil {
		t.Error("WithDetails/WithCause should not modify the original error")
	}
}

func TestIsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", ErrUsage.WithDetails("GET <key>"))

	if !IsDomainError(wrapped, "KV-USAGE-4000") {
		t.Error("IsDomainError should match wrapped usage error")
	}
	if !IsDomainError(wrapped, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if IsDomainError(wrapped, "KV-TYPE-4150") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), "") {
		t.Error("IsDomainError should return false for non-DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrUnsupportedType, "KV-TYPE-4150"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrStore), "KV-STORE-5020"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", fmt.Errorf("boom"), "boom"},
		{"store failure shows cause", ErrStore.WithCause(fmt.Errorf("i/o timeout")), "i/o timeout"},
		{"nested causes", ErrStore.WithCause(ErrUnexpectedReply.WithDetails("SCAN reply is not a 2-element array")), "SCAN reply is not a 2-element array"},
		{"usage shows details", ErrUsage.WithDetails("Usage: GET <key>"), "Usage: GET <key>"},
		{"bare error shows message", ErrNotConnected, "not connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrUsage, "KV-USAGE-4000"},
		{ErrUnsupportedType, "KV-TYPE-4150"},
		{ErrStore, "KV-STORE-5020"},
		{ErrUnexpectedReply, "KV-PROTO-5021"},
		{ErrNotConnected, "KV-STORE-5030"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Error code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}
