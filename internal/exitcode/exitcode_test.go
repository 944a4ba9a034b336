package exitcode

import (
	"fmt"
	"testing"

	"github.com/felixgeelhaar/strata/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"nil error", nil, Success},
		{"plain error", fmt.Errorf("boom"), GeneralError},
		{"plan not found", errors.NewPlanNotFoundError(7), NotFound},
		{"task not found", errors.NewTaskNotFoundError("0,1"), NotFound},
		{"lease required", errors.NewLeaseRequiredError("0"), LeaseConflict},
		{"lease invalid", errors.NewLeaseInvalidError("0"), LeaseConflict},
		{"already completed", errors.NewAlreadyCompletedError("0"), LeaseConflict},
		{"not completed", errors.NewNotCompletedError("0"), LeaseConflict},
		{"path syntax", errors.NewPathSyntaxError("a,b", nil), UsageError},
		{"invalid operation", errors.New(errors.ErrCodeInvalidOperation, "bad"), UsageError},
		{"lock failure", errors.NewLockFailureError(1), Unavailable},
		{"transport", errors.New(errors.ErrCodeClientTransport, "connection refused"), Unavailable},
		{"wrapped", fmt.Errorf("request failed: %w", errors.NewPlanNotFoundError(3)), NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCodeString(t *testing.T) {
	if Success.String() != "success" {
		t.Errorf("unexpected name %q", Success.String())
	}
	if Interrupted.Int() != 130 {
		t.Errorf("Interrupted = %d, want 130", Interrupted.Int())
	}
}
