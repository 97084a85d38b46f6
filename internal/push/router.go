package push

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
	"github.com/specialistvlad/stashgraph/internal/resolver"
)

// NodeHandler receives a node-addressed event for one matching local node.
type NodeHandler func(ctx context.Context, node graph.NodeRef, payload json.RawMessage)

// BroadcastHandler receives an event that is not addressed to a node.
type BroadcastHandler func(ctx context.Context, payload json.RawMessage)

// Router dispatches pushed events to handlers of the local nodes they address.
type Router struct {
	mu        sync.RWMutex
	resolver  *resolver.Resolver
	watched   []graph.NodeRef
	byNode    map[string][]NodeHandler
	broadcast map[string][]BroadcastHandler
}

// NewRouter creates a router resolving ids against r.
func NewRouter(r *resolver.Resolver) *Router {
	return &Router{
		resolver:  r,
		byNode:    make(map[string][]NodeHandler),
		broadcast: make(map[string][]BroadcastHandler),
	}
}

// Watch registers local nodes that want node-addressed events.
func (r *Router) Watch(nodes ...graph.NodeRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range nodes {
		if !slices.Contains(r.watched, n) {
			r.watched = append(r.watched, n)
		}
	}
}

// OnNode registers a handler for a node-addressed event.
func (r *Router) OnNode(event string, h NodeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byNode[event] = append(r.byNode[event], h)
}

// OnBroadcast registers a handler for an event sent to everyone.
func (r *Router) OnBroadcast(event string, h BroadcastHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast[event] = append(r.broadcast[event], h)
}

// Events returns every event name with at least one handler, sorted.
func (r *Router) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for ev := range r.byNode {
		seen[ev] = struct{}{}
	}
	for ev := range r.broadcast {
		seen[ev] = struct{}{}
	}
	events := make([]string, 0, len(seen))
	for ev := range seen {
		events = append(events, ev)
	}
	sort.Strings(events)
	return events
}

// Dispatch delivers one event and returns how many handler calls it made.
// A node-addressed event with a malformed node_id is dropped with an error;
// handlers are not called.
func (r *Router) Dispatch(ctx context.Context, event string, payload json.RawMessage) (int, error) {
	r.mu.RLock()
	res := r.resolver
	watched := slices.Clone(r.watched)
	nodeHandlers := slices.Clone(r.byNode[event])
	broadcastHandlers := slices.Clone(r.broadcast[event])
	r.mu.RUnlock()

	logger := ctxlog.FromContext(ctx).With("event", event)
	delivered := 0

	for _, h := range broadcastHandlers {
		h(ctx, payload)
		delivered++
	}
	if len(nodeHandlers) == 0 {
		return delivered, nil
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return delivered, fmt.Errorf("failed to decode %s payload: %w", event, err)
	}
	path, err := nodeid.Parse(string(env.NodeID))
	if err != nil {
		return delivered, fmt.Errorf("event %s: %w", event, err)
	}

	for _, n := range watched {
		if !res.Matches(ctx, n, path) {
			continue
		}
		for _, h := range nodeHandlers {
			h(ctx, n, payload)
			delivered++
		}
	}
	if delivered == 0 {
		logger.Debug("No local node matched pushed id.", "node_id", path.String())
	}
	return delivered, nil
}
