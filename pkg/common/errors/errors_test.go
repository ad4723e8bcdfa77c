package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrTimeout", ErrTimeout, "operation timed out"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("error should not be nil")
			}
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "sources",
				Field:  "channel",
				Value:  "",
				Reason: "cannot be empty",
			},
			want: "sources: invalid channel= (cannot be empty)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "sources",
				Field:  "buffer",
				Value:  -1,
				Reason: "cannot be negative",
				Hint:   "use 0 for an unbuffered receive loop",
			},
			want: "sources: invalid buffer=-1 (cannot be negative) - use 0 for an unbuffered receive loop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("stream", "factory", nil, "cannot be nil")

	if verr.Unwrap() != ErrInvalidConfiguration {
		t.Errorf("Unwrap() = %v, want ErrInvalidConfiguration", verr.Unwrap())
	}
	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should wrap ErrInvalidConfiguration")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid").
		WithHint("try using a positive value")

	if err.Hint != "try using a positive value" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try using a positive value")
	}

	// Should return same instance for chaining
	if result := err.WithHint("new hint"); result != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewOperationError("sources", "Redis", cause).WithContext("channel=events")

	want := "sources.Redis failed: connection refused (channel=events)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("OperationError should wrap the cause error")
	}
	if result := err.WithContext("other"); result != err {
		t.Error("WithContext should return the same instance")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout error", ErrTimeout, true},
		{"closed error", ErrClosed, false},
		{"random error", errors.New("random"), false},
		{"wrapped timeout", &OperationError{Cause: ErrTimeout}, true},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", NewValidationError("m", "f", 0, "r"), true},
		{"wrapped validation error", fmt.Errorf("configure: %w", NewValidationError("m", "f", 0, "r")), true},
		{"operation error", &OperationError{Cause: errors.New("test")}, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.want {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPanicError(t *testing.T) {
	t.Run("captures value and stack", func(t *testing.T) {
		var perr *PanicError
		func() {
			defer func() {
				perr = NewPanicError(recover())
			}()
			panic("boom")
		}()

		if perr.Value != "boom" {
			t.Errorf("Value = %v, want boom", perr.Value)
		}
		if !strings.Contains(perr.Stack, "goroutine") {
			t.Errorf("Stack should contain a goroutine trace, got %q", perr.Stack)
		}
		if !strings.HasPrefix(perr.Error(), "panic: boom") {
			t.Errorf("Error() = %q", perr.Error())
		}
		if perr.Unwrap() != nil {
			t.Error("Unwrap() should be nil for non-error values")
		}
	})

	t.Run("unwraps error values", func(t *testing.T) {
		cause := errors.New("handler failed")
		perr := &PanicError{Value: cause}
		if !errors.Is(perr, cause) {
			t.Error("PanicError should unwrap an error panic value")
		}
	})
}
