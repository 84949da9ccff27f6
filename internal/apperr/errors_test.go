package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected int
	}{
		{"not found", NotFound("user"), http.StatusNotFound},
		{"unauthorized", Unauthorized("token expired"), http.StatusUnauthorized},
		{"forbidden", Forbidden("blocked"), http.StatusForbidden},
		{"conflict", Conflict("already liked"), http.StatusConflict},
		{"validation", Validation("bad page"), http.StatusBadRequest},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.expected {
				t.Errorf("Status() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	orig := NotFound("post")
	wrapped := fmt.Errorf("composing feed: %w", orig)

	got := From(wrapped)
	if got.Kind != KindNotFound {
		t.Errorf("From(wrapped) kind = %s, want %s", got.Kind, KindNotFound)
	}

	plain := errors.New("driver crashed")
	got = From(plain)
	if got.Kind != KindInternal {
		t.Errorf("From(plain) kind = %s, want %s", got.Kind, KindInternal)
	}
	if got.Message != "internal server error" {
		t.Errorf("internal errors must not leak detail, got message %q", got.Message)
	}
	if !errors.Is(got, plain) {
		t.Error("From(plain) should wrap the original error")
	}
}

func TestInternalMessageGeneric(t *testing.T) {
	err := Internal(errors.New("password hash mismatch for user 42"))
	if err.Message != "internal server error" {
		t.Errorf("Message = %q, want generic message", err.Message)
	}
	// Full detail stays available for logging via Error()
	if err.Error() == err.Message {
		t.Error("Error() should carry the wrapped cause for logs")
	}
}
