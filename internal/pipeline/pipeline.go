// Package pipeline orchestrates calls to the external generation service.
// It is the only writer to the generation cache and the history stack:
// every other component reads or requests through it.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/attire/internal/cache"
	"github.com/felixgeelhaar/attire/internal/errors"
	"github.com/felixgeelhaar/attire/internal/garment"
	"github.com/felixgeelhaar/attire/internal/generator"
	"github.com/felixgeelhaar/attire/internal/history"
	"github.com/felixgeelhaar/attire/internal/log"
	"github.com/felixgeelhaar/attire/internal/outfit"
	"github.com/felixgeelhaar/attire/internal/pose"
	"github.com/felixgeelhaar/attire/internal/signature"
)

// State is the generation state of one (signature, poseKey) key.
type State string

const (
	// StateIdle means no attempt has been made for the key.
	StateIdle State = "idle"
	// StatePending means exactly one request is in flight for the key.
	StatePending State = "pending"
	// StateReady means a cached artifact exists for the key.
	StateReady State = "ready"
	// StateFailed means the last attempt failed; a fresh attempt re-enters
	// pending.
	StateFailed State = "failed"
)

// Snapshot is the narrow read surface the UI collaborators consume.
type Snapshot struct {
	Signature         signature.Signature
	PoseIndex         int
	PoseKey           string
	ImageRef          string
	AvailablePoseKeys []string
	CanUndo           bool
	CanRedo           bool
	LastError         error
}

// Options configures an Executor.
type Options struct {
	// CacheCapacity bounds the artifact LRU; zero uses the default.
	CacheCapacity int
	// Catalog overrides the built-in pose catalog.
	Catalog *pose.Catalog
	// Logger overrides the default logger.
	Logger *log.Logger
}

type inflight struct {
	done     chan struct{}
	artifact *cache.Artifact
	err      error
}

// Executor coordinates session mutations, the generation cache, and the
// history stack around calls to the generation client. Requests for the
// same (signature, poseKey) are coalesced into one in-flight call;
// completions apply the stale-result guard before touching live state.
type Executor struct {
	mu       sync.Mutex
	session  *outfit.Session
	cache    *cache.Cache
	catalog  *pose.Catalog
	history  *history.Stack
	client   generator.Client
	logger   *log.Logger
	inflight map[cache.Key]*inflight
	failed   map[cache.Key]error

	poseIndex int
}

// New creates an Executor for the given session and generation client.
func New(session *outfit.Session, client generator.Client, opts Options) (*Executor, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = pose.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	artifacts, err := cache.New(opts.CacheCapacity)
	if err != nil {
		return nil, err
	}

	return &Executor{
		session:  session,
		cache:    artifacts,
		catalog:  catalog,
		history:  history.NewStack(),
		client:   client,
		logger:   logger.With("component", "pipeline"),
		inflight: make(map[cache.Key]*inflight),
		failed:   make(map[cache.Key]error),
	}, nil
}

// Session returns the session this executor drives.
func (e *Executor) Session() *outfit.Session {
	return e.session
}

// Catalog returns the pose catalog.
func (e *Executor) Catalog() *pose.Catalog {
	return e.catalog
}

// History returns the committed history stack. Only the executor writes to
// it.
func (e *Executor) History() *history.Stack {
	return e.history
}

// StateFor returns the generation state of (sig, poseKey).
func (e *Executor) StateFor(sig signature.Signature, poseKey string) State {
	if e.cache.Contains(sig, poseKey) {
		return StateReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	key := cache.Key{Signature: sig, PoseKey: poseKey}
	if _, ok := e.inflight[key]; ok {
		return StatePending
	}
	if _, ok := e.failed[key]; ok {
		return StateFailed
	}
	return StateIdle
}

// Snapshot returns the current view state. The signature and artifact come
// from the current history entry when one exists, so undo and redo are
// reflected immediately.
func (e *Executor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Signature: e.session.Signature(),
		PoseIndex: e.poseIndex,
		PoseKey:   e.catalog.Entry(e.poseIndex).Key,
		CanUndo:   e.history.CanUndo(),
		CanRedo:   e.history.CanRedo(),
		LastError: e.session.LastError(),
	}

	if current, ok := e.history.Current(); ok {
		snap.Signature = current.Signature
		snap.ImageRef = current.ArtifactRef
	}

	for _, i := range e.catalog.Available(func(key string) bool {
		return e.cache.Contains(snap.Signature, key)
	}) {
		snap.AvailablePoseKeys = append(snap.AvailablePoseKeys, e.catalog.Entry(i).Key)
	}
	return snap
}

// EnsureBaseModel generates (or returns the cached) base-model artifact
// from the session's source image and commits it as the first history
// entry.
func (e *Executor) EnsureBaseModel(ctx context.Context) (*cache.Artifact, error) {
	e.mu.Lock()
	sig := e.session.BaseSignature()
	poseKey := e.catalog.Entry(0).Key
	directive := e.catalog.Entry(0).Directive
	sourceRef := e.session.BaseImageRef()
	e.mu.Unlock()

	if artifact, ok := e.cache.Get(sig, poseKey); ok {
		return artifact, nil
	}

	artifact, err := e.ensure(ctx, sig, poseKey, &generator.Request{
		AncillaryImageRefs: []string{sourceRef},
		Instruction:        baseInstruction(directive),
	})
	if err != nil {
		return nil, err
	}
	return artifact, e.complete(sig, artifact)
}

// ApplyGarment validates a wardrobe selection, applies it to the session,
// and generates the new visual state at the current pose. The try-on call
// derives from the previous signature's artifact plus the garment image;
// it never regenerates the outfit from scratch.
func (e *Executor) ApplyGarment(ctx context.Context, sel garment.Selection) (*cache.Artifact, error) {
	layer, err := garment.NewLayer(sel)
	if err != nil {
		// Rejected at the selection boundary; the session is untouched.
		return nil, err
	}

	e.mu.Lock()
	prevLayers := e.session.Layers()
	prevRef := e.currentRefLocked()
	poseEntry := e.catalog.Entry(e.poseIndex)
	newSig, err := e.session.ApplyGarment(layer)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	e.logger.Info("garment applied",
		"garment", layer.Name,
		"category", string(layer.Category),
		"signature", newSig.Short())

	artifact, err := e.ensure(ctx, newSig, poseEntry.Key, &generator.Request{
		BaseImageRef:       prevRef,
		AncillaryImageRefs: []string{layer.ImageRef},
		Instruction:        tryOnInstruction(layer, poseEntry.Directive),
	})
	if err != nil {
		// No partial commit: the stack reverts so the session shows the
		// last committed state.
		e.rollback(prevLayers)
		return nil, err
	}
	return artifact, e.complete(newSig, artifact)
}

// RemoveLayer removes an applied layer and generates the resulting state at
// the current pose when it is not already cached.
func (e *Executor) RemoveLayer(ctx context.Context, id string) (*cache.Artifact, error) {
	e.mu.Lock()
	layer, ok := e.session.Layer(id)
	if !ok {
		e.mu.Unlock()
		return nil, errors.NewLayerNotFoundError(id)
	}
	prevLayers := e.session.Layers()
	prevRef := e.currentRefLocked()
	poseEntry := e.catalog.Entry(e.poseIndex)
	newSig, err := e.session.RemoveLayer(id)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.mu.Unlock()

	e.logger.Info("layer removed", "garment", layer.Name, "signature", newSig.Short())

	if artifact, ok := e.cache.Get(newSig, poseEntry.Key); ok {
		return artifact, e.complete(newSig, artifact)
	}

	artifact, err := e.ensure(ctx, newSig, poseEntry.Key, &generator.Request{
		BaseImageRef: prevRef,
		Instruction:  removeInstruction(layer, poseEntry.Directive),
	})
	if err != nil {
		e.rollback(prevLayers)
		return nil, err
	}
	return artifact, e.complete(newSig, artifact)
}

// SelectPose moves the view to the pose at catalog index i, generating the
// artifact for the current signature when it is not cached.
func (e *Executor) SelectPose(ctx context.Context, index int) (*cache.Artifact, error) {
	if index < 0 || index >= e.catalog.Len() {
		return nil, fmt.Errorf("pose index %d out of range", index)
	}

	e.mu.Lock()
	sig := e.viewSignatureLocked()
	baseRef := e.currentRefLocked()
	target := e.catalog.Entry(index)
	e.mu.Unlock()

	if artifact, ok := e.cache.Get(sig, target.Key); ok {
		return artifact, e.completePose(sig, index, artifact)
	}

	artifact, err := e.ensure(ctx, sig, target.Key, &generator.Request{
		BaseImageRef: baseRef,
		Instruction:  poseChangeInstruction(target.Directive),
	})
	if err != nil {
		return nil, err
	}
	return artifact, e.completePose(sig, index, artifact)
}

// NextPose advances the view per the catalog's navigation rules. Moving
// past the last cached pose lands on an uncached one and requests its
// generation.
func (e *Executor) NextPose(ctx context.Context) (*cache.Artifact, error) {
	e.mu.Lock()
	target := e.catalog.Next(e.poseIndex, e.availableLocked())
	e.mu.Unlock()
	return e.SelectPose(ctx, target)
}

// PrevPose moves the view back per the catalog's navigation rules. It
// never issues a generation request: when the current pose is cached the
// target is always cached too and its artifact is returned with ok true.
// Otherwise the view index still moves, but no artifact exists yet and ok
// is false.
func (e *Executor) PrevPose(ctx context.Context) (artifact *cache.Artifact, ok bool, err error) {
	e.mu.Lock()
	sig := e.viewSignatureLocked()
	target := e.catalog.Previous(e.poseIndex, e.availableLocked())
	targetKey := e.catalog.Entry(target).Key
	e.mu.Unlock()

	if artifact, hit := e.cache.Get(sig, targetKey); hit {
		return artifact, true, e.completePose(sig, target, artifact)
	}

	e.mu.Lock()
	e.poseIndex = target
	e.mu.Unlock()
	return nil, false, nil
}

// Undo moves the history pointer back and restores the session to the
// entry now current: its layer stack, pose, and artifact. A mutation after
// an undo therefore branches from the restored composition, not from the
// undone one.
func (e *Executor) Undo() (history.Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history.Undo()
	if !ok {
		return history.Entry{}, false
	}
	e.restoreEntryLocked(entry)
	return entry, true
}

// Redo moves the history pointer forward and restores the session to the
// entry now current.
func (e *Executor) Redo() (history.Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history.Redo()
	if !ok {
		return history.Entry{}, false
	}
	e.restoreEntryLocked(entry)
	return entry, true
}

// LoadSavedOutfit restores a saved outfit into the live session. Loading
// pushes a new history entry; it never rewrites the stack.
func (e *Executor) LoadSavedOutfit(saved *history.SavedOutfit) history.Entry {
	entry := saved.Entry()

	e.cache.Put(&cache.Artifact{
		Signature: entry.Signature,
		PoseKey:   entry.PoseKey,
		ImageRef:  entry.ArtifactRef,
		CreatedAt: saved.SavedAt,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Push(entry)
	e.restoreEntryLocked(entry)
	e.logger.Info("saved outfit loaded", "name", saved.Name, "signature", entry.Signature.Short())
	return entry
}

// Reset clears the session, the cache, and the history back to a fresh
// state. Cached artifacts never leak across resets.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Reset()
	e.cache.Purge()
	e.history.Reset()
	e.failed = make(map[cache.Key]error)
	e.poseIndex = 0
	e.logger.Info("session reset")
}

// ensure returns the cached artifact for (sig, poseKey) or issues exactly
// one generation call for it, coalescing concurrent requests for the same
// key into the same pending result.
func (e *Executor) ensure(ctx context.Context, sig signature.Signature, poseKey string, req *generator.Request) (*cache.Artifact, error) {
	key := cache.Key{Signature: sig, PoseKey: poseKey}

	e.mu.Lock()
	if artifact, ok := e.cache.Get(sig, poseKey); ok {
		e.mu.Unlock()
		return artifact, nil
	}
	if pending, ok := e.inflight[key]; ok {
		e.mu.Unlock()
		select {
		case <-pending.done:
			return pending.artifact, pending.err
		case <-ctx.Done():
			return nil, generator.NewFailure(generator.FailureTransport, "request cancelled", ctx.Err())
		}
	}
	pending := &inflight{done: make(chan struct{})}
	e.inflight[key] = pending
	delete(e.failed, key)
	e.mu.Unlock()

	e.logger.Debug("generation started", "signature", sig.Short(), "pose", poseKey)
	result, err := e.client.Generate(ctx, req)

	e.mu.Lock()
	delete(e.inflight, key)
	if err != nil {
		// Failure is terminal for this attempt: nothing is cached and no
		// history entry is pushed. A later attempt re-enters pending.
		e.failed[key] = err
		e.session.SetLastError(err)
		pending.err = err
		e.mu.Unlock()
		close(pending.done)
		e.logger.WithError(err).Warn("generation failed", "signature", sig.Short(), "pose", poseKey)
		return nil, err
	}

	artifact := &cache.Artifact{
		Signature: sig,
		PoseKey:   poseKey,
		ImageRef:  result.ImageRef,
		CreatedAt: time.Now(),
	}
	e.cache.Put(artifact)
	e.session.ClearLastError()
	pending.artifact = artifact
	e.mu.Unlock()
	close(pending.done)

	e.logger.Info("generation completed",
		"signature", sig.Short(),
		"pose", poseKey,
		"model", result.Model,
		"latency", result.Latency)
	return artifact, nil
}

// complete commits a generation outcome for the current pose, applying the
// stale-result guard.
func (e *Executor) complete(sig signature.Signature, artifact *cache.Artifact) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitLocked(sig, e.poseIndex, artifact)
}

// completePose commits a generation outcome for an explicit pose index.
func (e *Executor) completePose(sig signature.Signature, index int, artifact *cache.Artifact) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitLocked(sig, index, artifact)
}

// commitLocked applies the stale-result guard and, when the result is
// still current, updates the live view and pushes the history entry. A
// stale completion for a still-reachable signature keeps its cache entry
// but never touches the live view or history. A completion for an
// unreachable signature is an invariant violation: the entry is evicted
// and the session stays on the last known-good history entry.
func (e *Executor) commitLocked(sig signature.Signature, index int, artifact *cache.Artifact) error {
	switch {
	case sig == e.session.Signature() || sig == e.viewSignatureLocked():
		// The entry records the stack that produced sig. When the session
		// moved on mid-flight but the view still shows sig, the stack comes
		// from the entry on screen, not the live session.
		layers := e.session.Layers()
		if sig != e.session.Signature() {
			if current, ok := e.history.Current(); ok {
				layers = current.Layers
			}
		}
		e.poseIndex = index
		e.history.Push(history.Entry{
			Signature:   sig,
			PoseKey:     artifact.PoseKey,
			ArtifactRef: artifact.ImageRef,
			Layers:      layers,
		})
		e.invalidateLocked()
		return nil

	case e.session.Reachable(sig):
		e.logger.Debug("stale result cached without commit",
			"signature", sig.Short(), "pose", artifact.PoseKey)
		return nil

	default:
		err := errors.NewUnreachableCommitError(string(sig))
		e.cache.Invalidate(func(s signature.Signature) bool { return s != sig })
		e.logger.WithError(err).Error("rolled back unreachable commit")
		return err
	}
}

func (e *Executor) rollback(layers []garment.Layer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.RestoreLayers(layers)
}

// invalidateLocked evicts every cache entry whose signature is no longer
// derivable from the current layer stack.
func (e *Executor) invalidateLocked() {
	evicted := e.cache.Invalidate(e.session.Reachable)
	if evicted > 0 {
		e.logger.Debug("cache invalidated", "evicted", evicted)
	}
}

// viewSignatureLocked is the signature of the state on screen: the current
// history entry when one exists, the session stack otherwise.
func (e *Executor) viewSignatureLocked() signature.Signature {
	if current, ok := e.history.Current(); ok {
		return current.Signature
	}
	return e.session.Signature()
}

func (e *Executor) currentRefLocked() string {
	if current, ok := e.history.Current(); ok {
		return current.ArtifactRef
	}
	return ""
}

func (e *Executor) availableLocked() []int {
	sig := e.viewSignatureLocked()
	return e.catalog.Available(func(key string) bool {
		return e.cache.Contains(sig, key)
	})
}

func (e *Executor) restorePoseLocked(poseKey string) {
	if i := e.catalog.IndexOf(poseKey); i >= 0 {
		e.poseIndex = i
	}
}

// restoreEntryLocked puts the session back on a history entry: the layer
// stack that produced its signature and the pose it was viewed in.
func (e *Executor) restoreEntryLocked(entry history.Entry) {
	e.session.RestoreLayers(entry.Layers)
	e.restorePoseLocked(entry.PoseKey)
}

func baseInstruction(poseDirective string) string {
	return fmt.Sprintf(
		"Create a full-body studio photograph of the person in this image on a neutral background, %s. Preserve their identity and features exactly.",
		poseDirective)
}

func tryOnInstruction(layer garment.Layer, poseDirective string) string {
	return fmt.Sprintf(
		"Dress the model in the first image with the %s shown in the second image (%s). Keep the model's identity, every other garment, and the background unchanged, %s.",
		layer.Name, layer.Category, poseDirective)
}

func removeInstruction(layer garment.Layer, poseDirective string) string {
	return fmt.Sprintf(
		"Remove the %s (%s) from the model in this image. Keep the model's identity, every other garment, and the background unchanged, %s.",
		layer.Name, layer.Category, poseDirective)
}

func poseChangeInstruction(poseDirective string) string {
	return fmt.Sprintf(
		"Regenerate this exact image with the model %s. Keep the model's identity, every garment, and the background unchanged.",
		poseDirective)
}
