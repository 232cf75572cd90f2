// Package history provides the linear undo/redo stack over committed
// composition states, plus the saved-outfit snapshot type.
package history

import (
	"time"

	"github.com/felixgeelhaar/attire/internal/garment"
	"github.com/felixgeelhaar/attire/internal/signature"
)

// Entry is one committed visual state: a signature, the pose it was viewed
// in, the artifact that was on screen, and the ordered layer stack the
// signature was derived from. Carrying the stack lets undo, redo, and
// saved-outfit loads restore the session to exactly the composition the
// entry shows, so a later mutation branches from the restored state.
// Entries before the pointer are undo targets; entries strictly after it
// are redo targets.
type Entry struct {
	Signature   signature.Signature
	PoseKey     string
	ArtifactRef string
	Layers      []garment.Layer
}

// Stack is a pointer-based linear history. Pushing after an undo discards
// the redo tail; history never branches.
type Stack struct {
	entries []Entry
	cursor  int // index of the current entry, -1 when empty
}

// NewStack creates an empty history stack.
func NewStack() *Stack {
	return &Stack{cursor: -1}
}

// Push appends an entry at the pointer, discarding any redo tail, and makes
// it current.
func (s *Stack) Push(entry Entry) {
	s.entries = append(s.entries[:s.cursor+1], entry)
	s.cursor = len(s.entries) - 1
}

// Current returns the entry at the pointer.
func (s *Stack) Current() (Entry, bool) {
	if s.cursor < 0 {
		return Entry{}, false
	}
	return s.entries[s.cursor], true
}

// Undo moves the pointer back one position if possible and returns the
// entry now current.
func (s *Stack) Undo() (Entry, bool) {
	if !s.CanUndo() {
		return Entry{}, false
	}
	s.cursor--
	return s.entries[s.cursor], true
}

// Redo moves the pointer forward one position if a redo tail exists and
// returns the entry now current.
func (s *Stack) Redo() (Entry, bool) {
	if !s.CanRedo() {
		return Entry{}, false
	}
	s.cursor++
	return s.entries[s.cursor], true
}

// CanUndo reports whether an undo target exists.
func (s *Stack) CanUndo() bool {
	return s.cursor > 0
}

// CanRedo reports whether a redo tail exists.
func (s *Stack) CanRedo() bool {
	return s.cursor >= 0 && s.cursor < len(s.entries)-1
}

// Len returns the number of entries, including any redo tail.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Reset drops all entries.
func (s *Stack) Reset() {
	s.entries = s.entries[:0]
	s.cursor = -1
}

// SavedOutfit is a named, independently persisted copy of one history
// entry. It never participates in cache invalidation and is never
// invalidated by later session mutation.
type SavedOutfit struct {
	ID           int64
	Name         string
	Signature    signature.Signature
	PoseKey      string
	ArtifactRef  string
	ThumbnailRef string
	Layers       []garment.Layer
	SavedAt      time.Time
}

// Entry converts the saved outfit back into a history entry for loading
// into a live session.
func (o SavedOutfit) Entry() Entry {
	return Entry{
		Signature:   o.Signature,
		PoseKey:     o.PoseKey,
		ArtifactRef: o.ArtifactRef,
		Layers:      o.Layers,
	}
}
