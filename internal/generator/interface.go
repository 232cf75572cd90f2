package generator

import "context"

// Client is the boundary to the external image-generation service. The
// pipeline treats it purely as a function: success yields a Result, failure
// yields an AttireError carrying one of the four FailureKind codes. Retry
// policy, auth, and encoding are the client's concern.
type Client interface {
	// Generate produces one image from an optional base artifact, ancillary
	// images, and an instruction.
	Generate(ctx context.Context, req *Request) (*Result, error)

	// Close cleans up any resources used by the client.
	Close() error
}
