// Package pause holds nodes that stopped mid-execution waiting for the user
// to edit their text. Waiting nodes are keyed by their fully-qualified path so
// the continue request, which carries that path, reaches exactly one waiter.
package pause

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/push"
)

// DefaultResyncInterval is how often a waiting node re-announces itself so
// clients that connected late still show the continue control.
const DefaultResyncInterval = 2 * time.Second

// ErrAlreadyPaused is returned when a node id is already waiting.
var ErrAlreadyPaused = errors.New("node is already paused")

// outcome is what a waiter is released with.
type outcome struct {
	text   string
	edited bool
}

type waiter struct {
	release chan outcome
}

// Registry tracks paused nodes.
type Registry struct {
	mu      sync.Mutex
	waiters map[string]*waiter
	emitter push.Emitter
	resync  time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithResyncInterval overrides DefaultResyncInterval. Non-positive values are ignored.
func WithResyncInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.resync = d
		}
	}
}

// New creates a registry announcing state changes through emitter.
func New(emitter push.Emitter, opts ...Option) *Registry {
	r := &Registry{
		waiters: make(map[string]*waiter),
		emitter: emitter,
		resync:  DefaultResyncInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pause blocks until the node is continued, cleared, or ctx is done.
//
// It returns the edited text and true when the node was continued, or an
// empty string and false when it was cleared; the caller then keeps its
// original text.
func (r *Registry) Pause(ctx context.Context, nodeID string) (string, bool, error) {
	logger := ctxlog.FromContext(ctx).With("node_id", nodeID)

	r.mu.Lock()
	if _, exists := r.waiters[nodeID]; exists {
		r.mu.Unlock()
		return "", false, fmt.Errorf("%w: %s", ErrAlreadyPaused, nodeID)
	}
	w := &waiter{release: make(chan outcome, 1)}
	r.waiters[nodeID] = w
	r.mu.Unlock()

	logger.Info("Node paused, waiting for continue.")
	r.announce(ctx, nodeID, true)

	ticker := time.NewTicker(r.resync)
	defer ticker.Stop()

	for {
		select {
		case out := <-w.release:
			logger.Info("Node released.", "edited", out.edited)
			return out.text, out.edited, nil
		case <-ticker.C:
			r.announce(ctx, nodeID, true)
		case <-ctx.Done():
			r.mu.Lock()
			if r.waiters[nodeID] == w {
				delete(r.waiters, nodeID)
			}
			r.mu.Unlock()
			r.announce(ctx, nodeID, false)
			return "", false, ctx.Err()
		}
	}
}

// Continue releases a paused node with edited text. It reports whether the
// node was waiting; continuing an unknown node is not an error.
func (r *Registry) Continue(ctx context.Context, nodeID, text string) bool {
	r.mu.Lock()
	w, ok := r.waiters[nodeID]
	if ok {
		delete(r.waiters, nodeID)
		w.release <- outcome{text: text, edited: true}
	}
	r.mu.Unlock()

	if !ok {
		ctxlog.FromContext(ctx).Debug("Continue for a node that is not paused.", "node_id", nodeID)
	}
	return ok
}

// ClearAll releases every paused node without edits, hides their continue
// controls, and returns their ids sorted.
func (r *Registry) ClearAll(ctx context.Context) []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.waiters))
	for id, w := range r.waiters {
		w.release <- outcome{}
		ids = append(ids, id)
	}
	clear(r.waiters)
	r.mu.Unlock()

	sort.Strings(ids)
	for _, id := range ids {
		r.announce(ctx, id, false)
	}
	ctxlog.FromContext(ctx).Info("Cleared paused nodes.", "count", len(ids))
	return ids
}

// Paused returns the ids of waiting nodes, sorted.
func (r *Registry) Paused() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.waiters))
	for id := range r.waiters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) announce(ctx context.Context, nodeID string, show bool) {
	if r.emitter == nil {
		return
	}
	err := r.emitter.Emit(push.EventSetContinue, push.SetContinue{NodeID: push.NodeID(nodeID), Show: show})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to emit continue state.", "node_id", nodeID, "show", show, "error", err)
	}
}
