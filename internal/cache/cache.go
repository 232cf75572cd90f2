// Package cache memoizes generated artifacts by (outfit signature, pose
// key) so the external generation service is never invoked twice for the
// same visual state.
package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/felixgeelhaar/attire/internal/signature"
)

// DefaultCapacity bounds the LRU when no capacity is configured. Entries
// are artifact references, not pixels, so the bound is generous.
const DefaultCapacity = 256

// Artifact is one generated image for a (signature, poseKey) pair. It is
// immutable: changing an outfit produces a new signature and, on miss, a
// new artifact, never a mutation of an existing one.
type Artifact struct {
	Signature signature.Signature
	PoseKey   string
	ImageRef  string
	CreatedAt time.Time
}

// Key addresses one artifact.
type Key struct {
	Signature signature.Signature
	PoseKey   string
}

// Cache is an LRU-bounded memo of generated artifacts.
type Cache struct {
	mu  sync.Mutex
	lru *lru.Cache[Key, *Artifact]
}

// New creates a cache bounded to the given capacity. A capacity of zero
// uses DefaultCapacity.
func New(capacity int) (*Cache, error) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	inner, err := lru.New[Key, *Artifact](capacity)
	if err != nil {
		return nil, fmt.Errorf("create artifact cache: %w", err)
	}
	return &Cache{lru: inner}, nil
}

// Get returns the cached artifact for (sig, poseKey), if any.
func (c *Cache) Get(sig signature.Signature, poseKey string) (*Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(Key{Signature: sig, PoseKey: poseKey})
}

// Contains reports whether an artifact exists for (sig, poseKey) without
// updating recency.
func (c *Cache) Contains(sig signature.Signature, poseKey string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(Key{Signature: sig, PoseKey: poseKey})
}

// Put stores an artifact. The first writer wins: a second put for the same
// key is a no-op, preserving artifact immutability. Returns true when the
// artifact was stored.
func (c *Cache) Put(artifact *Artifact) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{Signature: artifact.Signature, PoseKey: artifact.PoseKey}
	if c.lru.Contains(key) {
		return false
	}
	c.lru.Add(key, artifact)
	return true
}

// PoseKeysFor returns the pose keys cached for the given signature, without
// updating recency. Order is unspecified; callers needing catalog order
// resolve through the pose catalog.
func (c *Cache) PoseKeysFor(sig signature.Signature) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []string
	for _, key := range c.lru.Keys() {
		if key.Signature == sig {
			keys = append(keys, key.PoseKey)
		}
	}
	return keys
}

// Invalidate removes every entry whose signature fails the reachability
// predicate and returns the number evicted. Used when a layer mutation
// makes previously generated downstream signatures unreachable.
func (c *Cache) Invalidate(reachable func(sig signature.Signature) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for _, key := range c.lru.Keys() {
		if !reachable(key.Signature) {
			c.lru.Remove(key)
			evicted++
		}
	}
	return evicted
}

// Purge drops every entry. Called on session reset so cached state never
// leaks across sessions.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len returns the number of cached artifacts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
