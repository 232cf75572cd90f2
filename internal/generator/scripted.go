package generator

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// ScriptedClient is an in-process Client for tests and offline demos. Each
// request yields a deterministic image reference derived from the request
// content, so identical requests produce identical artifacts without
// touching the network.
type ScriptedClient struct {
	mu       sync.Mutex
	calls    int
	requests []Request
	failures []FailureKind
	hold     chan struct{}
}

// NewScriptedClient creates a scripted client.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{}
}

// Generate implements Client.Generate.
func (c *ScriptedClient) Generate(ctx context.Context, req *Request) (*Result, error) {
	c.mu.Lock()
	c.calls++
	c.requests = append(c.requests, *req)
	var kind FailureKind
	if len(c.failures) > 0 {
		kind = c.failures[0]
		c.failures = c.failures[1:]
	}
	hold := c.hold
	c.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, NewFailure(FailureTransport, "request cancelled", ctx.Err())
		}
	}

	if kind != "" {
		return nil, NewFailure(kind, fmt.Sprintf("scripted %s failure", kind), nil)
	}

	return &Result{
		ImageRef: scriptedRef(req),
		MimeType: "image/png",
		Model:    "scripted",
		Latency:  time.Millisecond,
	}, nil
}

// Close implements Client.Close.
func (c *ScriptedClient) Close() error {
	return nil
}

// Calls returns how many Generate calls were made.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Requests returns a copy of every request seen so far.
func (c *ScriptedClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// FailNext makes the next Generate calls fail with the given kinds, one
// kind per call, before reverting to success.
func (c *ScriptedClient) FailNext(kinds ...FailureKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, kinds...)
}

// Hold blocks subsequent Generate calls until the returned release function
// is invoked. Used to exercise request coalescing.
func (c *ScriptedClient) Hold() (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{})
	c.hold = ch
	return func() {
		c.mu.Lock()
		if c.hold == ch {
			c.hold = nil
		}
		c.mu.Unlock()
		close(ch)
	}
}

func scriptedRef(req *Request) string {
	h := blake3.New()
	h.Write([]byte(req.BaseImageRef))
	for _, ref := range req.AncillaryImageRefs {
		h.Write([]byte{0})
		h.Write([]byte(ref))
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Instruction))
	sum := h.Sum(nil)
	return "gen://scripted/" + hex.EncodeToString(sum[:8])
}
