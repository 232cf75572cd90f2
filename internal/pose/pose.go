// Package pose holds the fixed ordered catalog of pose directives shared by
// every session, and the navigation rules over the subset of poses already
// generated for the current outfit.
package pose

import (
	"fmt"
)

// Instruction is one pose directive from the fixed catalog. The catalog
// order is identical for every session; Key identifies the pose in cache
// keys and history entries.
type Instruction struct {
	Key       string
	Label     string
	Directive string
}

// Catalog is the fixed ordered pose catalog.
type Catalog struct {
	entries []Instruction
	index   map[string]int
}

// New creates a catalog from the given instructions. Keys must be unique
// and the catalog non-empty.
func New(entries []Instruction) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("pose catalog must not be empty")
	}

	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("pose %d has an empty key", i)
		}
		if _, dup := index[e.Key]; dup {
			return nil, fmt.Errorf("duplicate pose key: %s", e.Key)
		}
		index[e.Key] = i
	}

	return &Catalog{entries: entries, index: index}, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New([]Instruction{
		{Key: "front", Label: "Front", Directive: "standing straight, facing the camera"},
		{Key: "three-quarter-left", Label: "Three-quarter left", Directive: "turned three-quarters to the left"},
		{Key: "profile-left", Label: "Left profile", Directive: "full left profile view"},
		{Key: "back", Label: "Back", Directive: "facing away from the camera"},
		{Key: "profile-right", Label: "Right profile", Directive: "full right profile view"},
		{Key: "three-quarter-right", Label: "Three-quarter right", Directive: "turned three-quarters to the right"},
		{Key: "walking", Label: "Walking", Directive: "mid-stride walking toward the camera"},
		{Key: "seated", Label: "Seated", Directive: "seated on a stool, relaxed posture"},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the full ordered catalog.
func (c *Catalog) Entries() []Instruction {
	out := make([]Instruction, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry returns the instruction at catalog index i.
func (c *Catalog) Entry(i int) Instruction {
	return c.entries[i]
}

// IndexOf returns the catalog index of the given pose key, or -1.
func (c *Catalog) IndexOf(key string) int {
	if i, ok := c.index[key]; ok {
		return i
	}
	return -1
}

// Available returns the catalog indices, in catalog order, for which the
// membership function reports a cached artifact.
func (c *Catalog) Available(has func(key string) bool) []int {
	var out []int
	for i, e := range c.entries {
		if has(e.Key) {
			out = append(out, i)
		}
	}
	return out
}

// Previous resolves the "previous pose" target from catalog index current,
// given the available indices in catalog order. When the current pose is
// itself available, the move wraps within the available subsequence, so it
// always lands on a pose that already has a cached artifact. When it is not
// available, the move wraps over the full catalog instead.
func (c *Catalog) Previous(current int, available []int) int {
	n := len(c.entries)
	p := position(available, current)
	if p < 0 {
		return ((current-1)%n + n) % n
	}
	m := len(available)
	return available[((p-1)%m+m)%m]
}

// Next resolves the "next pose" target from catalog index current. Unlike
// Previous, the move never wraps within the available subsequence: past the
// last available pose it falls through to the next catalog index, which is
// how a not-yet-generated pose gets requested.
func (c *Catalog) Next(current int, available []int) int {
	n := len(c.entries)
	p := position(available, current)
	if p < 0 || p == len(available)-1 {
		return (current + 1) % n
	}
	return available[p+1]
}

func position(available []int, current int) int {
	for p, idx := range available {
		if idx == current {
			return p
		}
	}
	return -1
}
