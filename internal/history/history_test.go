package history

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/attire/internal/signature"
)

func entry(n int) Entry {
	return Entry{
		Signature:   signature.Compute("m", []string{fmt.Sprintf("g%d", n)}),
		PoseKey:     "front",
		ArtifactRef: fmt.Sprintf("gen://%d", n),
	}
}

func TestEmptyStack(t *testing.T) {
	s := NewStack()

	if _, ok := s.Current(); ok {
		t.Error("empty stack has no current entry")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("empty stack can neither undo nor redo")
	}
	if _, ok := s.Undo(); ok {
		t.Error("undo on empty stack should fail")
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo on empty stack should fail")
	}
}

func TestPushAndCurrent(t *testing.T) {
	s := NewStack()
	s.Push(entry(1))

	current, ok := s.Current()
	if !ok || current.ArtifactRef != "gen://1" {
		t.Fatalf("expected current gen://1, got %v (ok=%v)", current, ok)
	}
	if s.CanUndo() {
		t.Error("single entry has no undo target")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := NewStack()
	const n = 5
	for i := 1; i <= n; i++ {
		s.Push(entry(i))
	}

	// undo x k then redo x k restores the exact prior state, for any k.
	for k := 1; k < n; k++ {
		for i := 0; i < k; i++ {
			if _, ok := s.Undo(); !ok {
				t.Fatalf("undo %d of %d failed", i+1, k)
			}
		}
		for i := 0; i < k; i++ {
			if _, ok := s.Redo(); !ok {
				t.Fatalf("redo %d of %d failed", i+1, k)
			}
		}
		current, _ := s.Current()
		if !reflect.DeepEqual(current, entry(n)) {
			t.Fatalf("round trip k=%d did not restore the top entry: %v", k, current)
		}
	}
}

func TestUndoReturnsNowCurrentEntry(t *testing.T) {
	s := NewStack()
	s.Push(entry(1))
	s.Push(entry(2))

	got, ok := s.Undo()
	if !ok {
		t.Fatal("undo should succeed")
	}
	if !reflect.DeepEqual(got, entry(1)) {
		t.Errorf("undo should return the entry now current, got %v", got)
	}
}

func TestPushTruncatesRedoTail(t *testing.T) {
	s := NewStack()
	s.Push(entry(1))
	s.Push(entry(2))
	s.Push(entry(3))

	s.Undo()
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("redo tail should exist after undo")
	}

	s.Push(entry(4))

	if s.CanRedo() {
		t.Error("push must discard the redo tail")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries after truncation, got %d", s.Len())
	}
	if _, ok := s.Redo(); ok {
		t.Error("redo after truncating push should return none")
	}
}

func TestReset(t *testing.T) {
	s := NewStack()
	s.Push(entry(1))
	s.Push(entry(2))

	s.Reset()

	if s.Len() != 0 {
		t.Errorf("expected empty stack after reset, got %d entries", s.Len())
	}
	if _, ok := s.Current(); ok {
		t.Error("reset stack has no current entry")
	}
}

func TestSavedOutfitEntry(t *testing.T) {
	saved := SavedOutfit{
		Name:        "date night",
		Signature:   signature.Compute("m", []string{"g1"}),
		PoseKey:     "front",
		ArtifactRef: "gen://1",
	}

	e := saved.Entry()
	if e.Signature != saved.Signature || e.PoseKey != "front" || e.ArtifactRef != "gen://1" {
		t.Errorf("Entry() should carry signature, pose, and artifact: %v", e)
	}
}
