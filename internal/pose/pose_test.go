package pose

import (
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]Instruction{
		{Key: "a", Label: "A"},
		{Key: "b", Label: "B"},
		{Key: "c", Label: "C"},
		{Key: "d", Label: "D"},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("empty catalog should be rejected")
	}
	if _, err := New([]Instruction{{Key: "a"}, {Key: "a"}}); err == nil {
		t.Error("duplicate keys should be rejected")
	}
	if _, err := New([]Instruction{{Key: ""}}); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("default catalog must not be empty")
	}
	if c.IndexOf("front") != 0 {
		t.Error("front pose should lead the default catalog")
	}
	if c.IndexOf("no-such-pose") != -1 {
		t.Error("unknown key should resolve to -1")
	}
}

func TestAvailablePreservesCatalogOrder(t *testing.T) {
	c := testCatalog(t)
	cached := map[string]bool{"c": true, "a": true}

	got := c.Available(func(key string) bool { return cached[key] })

	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected available [0 2], got %v", got)
	}
}

// Catalog [a b c d], available [a c], current c: next falls through to d on
// the full catalog instead of wrapping back to a; previous wraps within the
// available subsequence and lands on a.
func TestNavigationAsymmetry(t *testing.T) {
	c := testCatalog(t)
	available := []int{0, 2} // a, c
	current := 2             // c

	if got := c.Next(current, available); got != 3 {
		t.Errorf("Next from last available pose should fall through to index 3, got %d", got)
	}
	if got := c.Previous(current, available); got != 0 {
		t.Errorf("Previous should stay within available and yield index 0, got %d", got)
	}
}

func TestNextWithinAvailable(t *testing.T) {
	c := testCatalog(t)
	available := []int{0, 2}

	if got := c.Next(0, available); got != 2 {
		t.Errorf("Next from a should move to the next available index 2, got %d", got)
	}
}

func TestPreviousWrapsWithinAvailable(t *testing.T) {
	c := testCatalog(t)
	available := []int{0, 2}

	if got := c.Previous(0, available); got != 2 {
		t.Errorf("Previous from the first available pose should wrap to index 2, got %d", got)
	}
}

func TestNavigationWhenCurrentUnavailable(t *testing.T) {
	c := testCatalog(t)
	available := []int{0, 2}

	// Current pose b has no cached artifact: both directions use plain
	// modular arithmetic over the full catalog.
	if got := c.Previous(1, available); got != 0 {
		t.Errorf("Previous from unavailable pose should use the full catalog, got %d", got)
	}
	if got := c.Next(1, available); got != 2 {
		t.Errorf("Next from unavailable pose should use the full catalog, got %d", got)
	}

	// Wrap-around at the catalog edges.
	if got := c.Previous(0, nil); got != 3 {
		t.Errorf("Previous from index 0 with nothing available should wrap to 3, got %d", got)
	}
	if got := c.Next(3, nil); got != 0 {
		t.Errorf("Next from index 3 with nothing available should wrap to 0, got %d", got)
	}
}

func TestNextFromLastAvailableAtCatalogEnd(t *testing.T) {
	c := testCatalog(t)
	available := []int{0, 3} // a, d

	// d is the last available pose and the last catalog entry: fall-through
	// wraps the full catalog to index 0.
	if got := c.Next(3, available); got != 0 {
		t.Errorf("expected wrap to 0, got %d", got)
	}
}
