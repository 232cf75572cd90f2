package exitcode

import (
	stderrors "errors"
	"testing"

	"github.com/felixgeelhaar/attire/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"plain error", stderrors.New("boom"), GeneralError},
		{"safety blocked", errors.New(errors.ErrCodeGenSafetyBlocked, "blocked"), GenerationError},
		{"text only", errors.New(errors.ErrCodeGenTextOnly, "no image"), GenerationError},
		{"transport", errors.New(errors.ErrCodeGenTransport, "timeout"), NetworkError},
		{"store", errors.New(errors.ErrCodeStoreNotFound, "missing"), StoreError},
		{"config", errors.New(errors.ErrCodeConfigInvalid, "bad yaml"), UsageError},
		{"invalid category", errors.NewInvalidCategoryError("cape"), UsageError},
		{"invariant", errors.New(errors.ErrCodeInvariantUnreachableCommit, "stale"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	if GetExitCodeDescription(Success) != "Success" {
		t.Error("unexpected description for Success")
	}
	if GetExitCodeDescription(999) != "Unknown error" {
		t.Error("unexpected description for unknown code")
	}
}
