// Package outfit owns the ordered garment-layer stack for one session and
// the signatures derived from it.
package outfit

import (
	"github.com/google/uuid"

	"github.com/felixgeelhaar/attire/internal/errors"
	"github.com/felixgeelhaar/attire/internal/garment"
	"github.com/felixgeelhaar/attire/internal/signature"
)

// Session is the live composition state: a base model plus an ordered stack
// of applied garment layers. All mutation is synchronous; suspension only
// happens in the pipeline around generation calls.
type Session struct {
	id           string
	baseModelID  string
	baseImageRef string
	layers       []garment.Layer
	nextOrder    int
	lastErr      error
}

// NewSession creates a session for the given base-model source image. The
// base-model identity is minted fresh; two sessions only share signatures
// when created via NewSessionWithBase with the same identity.
func NewSession(baseImageRef string) *Session {
	return NewSessionWithBase(uuid.NewString(), baseImageRef)
}

// NewSessionWithBase creates a session with an explicit base-model
// identity, making signatures reproducible across sessions.
func NewSessionWithBase(baseModelID, baseImageRef string) *Session {
	return &Session{
		id:           uuid.NewString(),
		baseModelID:  baseModelID,
		baseImageRef: baseImageRef,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// BaseModelID returns the base-model identity included in every signature.
func (s *Session) BaseModelID() string {
	return s.baseModelID
}

// BaseImageRef returns the source image the base model is generated from.
func (s *Session) BaseImageRef() string {
	return s.baseImageRef
}

// ApplyGarment appends a layer to the stack. A layer of an already-present
// category replaces the existing one in place, keeping the stack position;
// categories never stack on themselves. Returns the new signature.
func (s *Session) ApplyGarment(layer garment.Layer) (signature.Signature, error) {
	if layer.Category == "" {
		return signature.Empty, errors.NewInvalidCategoryError("")
	}

	replaced := false
	for i := range s.layers {
		if s.layers[i].Category == layer.Category {
			layer.Order = s.layers[i].Order
			s.layers[i] = layer
			replaced = true
			break
		}
	}
	if !replaced {
		layer.Order = s.nextOrder
		s.nextOrder++
		s.layers = append(s.layers, layer)
	}

	return s.Signature(), nil
}

// RemoveLayer removes a layer by id, preserving the order of the remaining
// layers, and returns the recomputed signature.
func (s *Session) RemoveLayer(id string) (signature.Signature, error) {
	for i := range s.layers {
		if s.layers[i].ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return s.Signature(), nil
		}
	}
	return signature.Empty, errors.NewLayerNotFoundError(id)
}

// Layer returns the applied layer with the given id.
func (s *Session) Layer(id string) (garment.Layer, bool) {
	for _, l := range s.layers {
		if l.ID == id {
			return l, true
		}
	}
	return garment.Layer{}, false
}

// Layers returns a copy of the ordered layer stack.
func (s *Session) Layers() []garment.Layer {
	out := make([]garment.Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// LayerIDs returns the ordered layer-id sequence the signature is derived
// from.
func (s *Session) LayerIDs() []string {
	ids := make([]string, len(s.layers))
	for i, l := range s.layers {
		ids[i] = l.ID
	}
	return ids
}

// Signature computes the signature of the current stack. Pure and
// side-effect-free; identical ordered id sequences always yield identical
// signatures.
func (s *Session) Signature() signature.Signature {
	return signature.Compute(s.baseModelID, s.LayerIDs())
}

// BaseSignature returns the base-model-only signature.
func (s *Session) BaseSignature() signature.Signature {
	return signature.Compute(s.baseModelID, nil)
}

// Reachable reports whether sig is still derivable from the current stack:
// the base signature or the signature of any prefix of the ordered stack.
// Cache entries outside this set are invalidation targets.
func (s *Session) Reachable(sig signature.Signature) bool {
	ids := s.LayerIDs()
	for n := 0; n <= len(ids); n++ {
		if signature.Compute(s.baseModelID, ids[:n]) == sig {
			return true
		}
	}
	return false
}

// RestoreLayers replaces the stack wholesale. Rollback support for the
// pipeline: a failed generation must leave the session exactly as it was.
func (s *Session) RestoreLayers(layers []garment.Layer) {
	s.layers = append(s.layers[:0], layers...)
	s.nextOrder = 0
	for _, l := range s.layers {
		if l.Order >= s.nextOrder {
			s.nextOrder = l.Order + 1
		}
	}
}

// Reset clears all layers back to the base-model-only state and drops any
// recorded error.
func (s *Session) Reset() {
	s.layers = s.layers[:0]
	s.nextOrder = 0
	s.lastErr = nil
}

// SetLastError records a user-visible failure on the session.
func (s *Session) SetLastError(err error) {
	s.lastErr = err
}

// LastError returns the most recent failure, if any.
func (s *Session) LastError() error {
	return s.lastErr
}

// ClearLastError drops the recorded failure.
func (s *Session) ClearLastError() {
	s.lastErr = nil
}
