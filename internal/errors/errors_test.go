package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePlanNotFound, "test error message")

	if err.Code != ErrCodePlanNotFound {
		t.Errorf("expected code %s, got %s", ErrCodePlanNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeConfigRead, "failed to load config", cause)

	if err.Code != ErrCodeConfigRead {
		t.Errorf("expected code %s, got %s", ErrCodeConfigRead, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause via errors.Is")
	}

	if !strings.Contains(err.Error(), "underlying error") {
		t.Errorf("expected error string to contain cause, got '%s'", err.Error())
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrCodeLeaseInvalid, "lease mismatch").
		WithSuggestion("generate a fresh lease")

	msg := err.Error()
	if !strings.Contains(msg, "[LEASE-002]") {
		t.Errorf("expected code prefix in message, got '%s'", msg)
	}
	if !strings.Contains(msg, "Suggestions:") {
		t.Errorf("expected suggestions section, got '%s'", msg)
	}
	if !strings.Contains(msg, "generate a fresh lease") {
		t.Errorf("expected suggestion text, got '%s'", msg)
	}
}

func TestCodeOf(t *testing.T) {
	err := NewTaskNotFoundError("0,1")
	if CodeOf(err) != ErrCodeTaskNotFound {
		t.Errorf("expected %s, got %s", ErrCodeTaskNotFound, CodeOf(err))
	}

	wrapped := fmt.Errorf("adapter context: %w", err)
	if CodeOf(wrapped) != ErrCodeTaskNotFound {
		t.Error("expected CodeOf to see through fmt.Errorf wrapping")
	}

	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("expected empty code for non-strata errors")
	}
}

func TestHasCode(t *testing.T) {
	err := NewLeaseRequiredError("2")
	if !HasCode(err, ErrCodeLeaseRequired) {
		t.Error("expected HasCode to match the constructor's code")
	}
	if HasCode(err, ErrCodeLeaseInvalid) {
		t.Error("expected HasCode to reject a different code")
	}
	if HasCode(nil, ErrCodeLeaseRequired) {
		t.Error("expected HasCode to reject nil errors")
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		name string
		err  *StrataError
		code ErrorCode
	}{
		{"plan not found", NewPlanNotFoundError(7), ErrCodePlanNotFound},
		{"task not found", NewTaskNotFoundError("0,3"), ErrCodeTaskNotFound},
		{"lease required", NewLeaseRequiredError("1"), ErrCodeLeaseRequired},
		{"lease invalid", NewLeaseInvalidError("1"), ErrCodeLeaseInvalid},
		{"already completed", NewAlreadyCompletedError("1"), ErrCodeAlreadyCompleted},
		{"not completed", NewNotCompletedError("1"), ErrCodeNotCompleted},
		{"path syntax", NewPathSyntaxError("a,b", fmt.Errorf("bad digit")), ErrCodePathSyntax},
		{"lock failure", NewLockFailureError(3), ErrCodeLockFailure},
	}

	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("%s: expected code %s, got %s", tc.name, tc.code, tc.err.Code)
		}
		if tc.err.Message == "" {
			t.Errorf("%s: expected non-empty message", tc.name)
		}
	}
}
