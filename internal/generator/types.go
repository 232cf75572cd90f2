package generator

import (
	"time"

	"github.com/felixgeelhaar/attire/internal/errors"
)

// FailureKind classifies the ways the generation service can fail a
// request. The core treats the service as a function returning an image
// artifact or exactly one of these kinds.
type FailureKind string

const (
	// FailureSafetyBlocked means the service refused the request on safety
	// grounds.
	FailureSafetyBlocked FailureKind = "safety-blocked"

	// FailureNoCandidate means the service answered but produced no
	// candidate output.
	FailureNoCandidate FailureKind = "no-candidate"

	// FailureTextOnly means the service returned text where an image was
	// required.
	FailureTextOnly FailureKind = "text-only"

	// FailureTransport covers network, HTTP, and protocol errors.
	FailureTransport FailureKind = "transport"
)

// ErrorCode maps a failure kind to its error code.
func (k FailureKind) ErrorCode() errors.ErrorCode {
	switch k {
	case FailureSafetyBlocked:
		return errors.ErrCodeGenSafetyBlocked
	case FailureNoCandidate:
		return errors.ErrCodeGenNoCandidate
	case FailureTextOnly:
		return errors.ErrCodeGenTextOnly
	default:
		return errors.ErrCodeGenTransport
	}
}

// NewFailure builds the typed error for a failure kind.
func NewFailure(kind FailureKind, detail string, cause error) *errors.AttireError {
	err := &errors.AttireError{
		Code:    kind.ErrorCode(),
		Message: detail,
		Cause:   cause,
	}
	switch kind {
	case FailureSafetyBlocked:
		err.WithSuggestion("Try a different garment image")
	case FailureTextOnly, FailureNoCandidate:
		err.WithSuggestion("Retry the generation request")
	case FailureTransport:
		err.WithSuggestion("Check network connectivity and retry")
	}
	return err
}

// KindOf extracts the failure kind from an error produced by a Client.
func KindOf(err error) (FailureKind, bool) {
	attErr, ok := err.(*errors.AttireError)
	if !ok {
		return "", false
	}
	switch attErr.Code {
	case errors.ErrCodeGenSafetyBlocked:
		return FailureSafetyBlocked, true
	case errors.ErrCodeGenNoCandidate:
		return FailureNoCandidate, true
	case errors.ErrCodeGenTextOnly:
		return FailureTextOnly, true
	case errors.ErrCodeGenTransport:
		return FailureTransport, true
	default:
		return "", false
	}
}

// Request contains all parameters for one generation call. Image references
// are opaque to the core; a concrete client decides how to encode them on
// the wire.
type Request struct {
	// BaseImageRef is the artifact the generation starts from. Empty for
	// the initial base-model generation.
	BaseImageRef string

	// AncillaryImageRefs are additional inputs, typically the newly applied
	// garment image.
	AncillaryImageRefs []string

	// Instruction is the directive text for the service.
	Instruction string
}

// Result is a successful generation outcome.
type Result struct {
	// ImageRef is the opaque reference to the generated image.
	ImageRef string

	// MimeType is the media type of the generated image.
	MimeType string

	// Model is the model that produced the image.
	Model string

	// Latency is how long the generation took.
	Latency time.Duration
}
