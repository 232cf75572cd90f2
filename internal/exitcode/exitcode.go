package exitcode

import (
	"os"

	"github.com/felixgeelhaar/attire/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// GenerationError indicates the image generation service refused or
	// failed the request
	GenerationError = 3

	// StoreError indicates a saved-outfit store failure
	StoreError = 4

	// NetworkError indicates a network connectivity issue
	NetworkError = 5

	// Interrupted indicates the user cancelled the operation
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	attErr, ok := err.(*errors.AttireError)
	if !ok {
		return GeneralError
	}

	switch attErr.Code {
	case errors.ErrCodeGenSafetyBlocked,
		errors.ErrCodeGenNoCandidate,
		errors.ErrCodeGenTextOnly:
		return GenerationError
	case errors.ErrCodeGenTransport:
		return NetworkError
	case errors.ErrCodeStoreOpenFailed,
		errors.ErrCodeStoreNotFound,
		errors.ErrCodeStoreWriteFailed:
		return StoreError
	case errors.ErrCodeConfigNotFound,
		errors.ErrCodeConfigInvalid,
		errors.ErrCodeConfigUnmarshal,
		errors.ErrCodeLayerInvalidCategory,
		errors.ErrCodeLayerInvalidInput:
		return UsageError
	default:
		return GeneralError
	}
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case GenerationError:
		return "Image generation refused or failed"
	case StoreError:
		return "Saved-outfit store error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
