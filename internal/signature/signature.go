// Package signature derives content-addressed identities for ordered
// garment-layer stacks. Two stacks with the same base model and the same
// ordered layer-id sequence always share a signature; any difference in
// order or membership yields a different one.
package signature

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Size is the signature length in bytes.
const Size = 16

// Signature identifies one visual state of the dressed model. It is the
// primary component of every cache key; equality of signatures, not object
// identity, governs cache hits.
type Signature string

// Empty is the zero signature, held before a base model exists.
const Empty Signature = ""

// Compute derives the signature for the given base-model identity and
// ordered layer-id sequence. Every field is length-prefixed before hashing
// so that concatenation ambiguity cannot produce collisions between
// distinct sequences.
func Compute(baseModelID string, layerIDs []string) Signature {
	h := blake3.New()

	writeField(h, baseModelID)
	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(len(layerIDs)))
	h.Write(count[:])
	for _, id := range layerIDs {
		writeField(h, id)
	}

	sum := h.Sum(nil)
	return Signature(hex.EncodeToString(sum[:Size]))
}

func writeField(h *blake3.Hasher, s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

// IsEmpty reports whether the signature is the zero value.
func (s Signature) IsEmpty() bool {
	return s == Empty
}

// Short returns a truncated form for logs and display.
func (s Signature) Short() string {
	if len(s) > 8 {
		return string(s[:8])
	}
	return string(s)
}

// String implements fmt.Stringer.
func (s Signature) String() string {
	return string(s)
}
