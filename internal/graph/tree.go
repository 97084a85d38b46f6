package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type graphRecord struct {
	subgraphID string
	root       RootFlag
	nodes      []NodeRef
	byLocalID  map[int64]NodeRef
	container  NodeRef
}

type nodeRecord struct {
	localID  int64
	typ      string
	owner    GraphRef
	subgraph GraphRef
	removed  bool
}

// NodeInfo is a snapshot of a node record.
type NodeInfo struct {
	LocalID  int64
	Type     string
	Owner    GraphRef
	Subgraph GraphRef
}

// IsContainer reports whether the node contains a subgraph.
func (n NodeInfo) IsContainer() bool {
	return n.Subgraph != NoGraph
}

// Tree implements Reader as an arena of graph and node records, using a
// mutex for thread-safe concurrent access.
type Tree struct {
	mu           sync.RWMutex
	graphs       []graphRecord
	nodes        []nodeRecord
	bySubgraphID map[string]GraphRef
	root         GraphRef
}

var _ Reader = (*Tree)(nil)

// NewTree creates a tree holding only an empty root graph.
func NewTree() *Tree {
	t := &Tree{bySubgraphID: make(map[string]GraphRef)}
	t.root = t.addGraphLocked(uuid.NewString(), RootYes)
	return t
}

// Root returns the root graph.
func (t *Tree) Root() GraphRef {
	return t.root
}

func (t *Tree) addGraphLocked(id string, flag RootFlag) GraphRef {
	ref := GraphRef(len(t.graphs))
	t.graphs = append(t.graphs, graphRecord{
		subgraphID: id,
		root:       flag,
		byLocalID:  make(map[int64]NodeRef),
		container:  NoNode,
	})
	t.bySubgraphID[id] = ref
	return ref
}

// AddSubgraph registers a new, detached subgraph. An empty id is replaced
// with a freshly generated UUID.
func (t *Tree) AddSubgraph(id string) (GraphRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := t.bySubgraphID[id]; exists {
		return NoGraph, fmt.Errorf("%w: %q", ErrDuplicateSubgraphID, id)
	}
	return t.addGraphLocked(id, RootNo), nil
}

// AddNode appends a node to the owner graph.
func (t *Tree) AddNode(owner GraphRef, localID int64, typ string) (NodeRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.validLocked(owner) {
		return NoNode, fmt.Errorf("%w: %d", ErrUnknownGraph, owner)
	}
	if localID < 0 {
		return NoNode, fmt.Errorf("%w: %d", ErrInvalidLocalID, localID)
	}
	g := &t.graphs[owner]
	if _, exists := g.byLocalID[localID]; exists {
		return NoNode, fmt.Errorf("%w: %d in graph %q", ErrDuplicateLocalID, localID, g.subgraphID)
	}

	ref := NodeRef(len(t.nodes))
	t.nodes = append(t.nodes, nodeRecord{
		localID:  localID,
		typ:      typ,
		owner:    owner,
		subgraph: NoGraph,
	})
	g.nodes = append(g.nodes, ref)
	g.byLocalID[localID] = ref
	return ref, nil
}

// Attach makes node the container of sub.
func (t *Tree) Attach(node NodeRef, sub GraphRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.liveNodeLocked(node) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}
	if !t.validLocked(sub) || sub == t.root {
		return fmt.Errorf("%w: %d", ErrUnknownGraph, sub)
	}
	n := &t.nodes[node]
	if n.subgraph != NoGraph {
		return fmt.Errorf("%w: node %d", ErrAlreadyContainer, n.localID)
	}
	if t.graphs[sub].container != NoNode {
		return fmt.Errorf("%w: %q", ErrSubgraphShared, t.graphs[sub].subgraphID)
	}

	// Walk up from the container's owner; meeting sub means sub is an ancestor.
	for g := n.owner; g != NoGraph; {
		if g == sub {
			return fmt.Errorf("%w: %q", ErrCycle, t.graphs[sub].subgraphID)
		}
		c := t.graphs[g].container
		if c == NoNode {
			break
		}
		g = t.nodes[c].owner
	}

	n.subgraph = sub
	t.graphs[sub].container = node
	return nil
}

// RemoveNode deletes a node from its owner graph. A subgraph it contained is
// kept but detached, leaving it unreachable from the root.
func (t *Tree) RemoveNode(node NodeRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.liveNodeLocked(node) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}
	n := &t.nodes[node]
	g := &t.graphs[n.owner]
	delete(g.byLocalID, n.localID)
	for i, ref := range g.nodes {
		if ref == node {
			g.nodes = append(g.nodes[:i:i], g.nodes[i+1:]...)
			break
		}
	}
	if n.subgraph != NoGraph {
		t.graphs[n.subgraph].container = NoNode
	}
	n.removed = true
	n.owner = NoGraph
	n.subgraph = NoGraph
	return nil
}

// SetRootFlag overrides the root flag of g, mirroring hosts that omit it.
func (t *Tree) SetRootFlag(g GraphRef, flag RootFlag) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.validLocked(g) {
		return fmt.Errorf("%w: %d", ErrUnknownGraph, g)
	}
	t.graphs[g].root = flag
	return nil
}

// SubgraphByID finds a graph by its subgraph id.
func (t *Tree) SubgraphByID(id string) (GraphRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ref, ok := t.bySubgraphID[id]
	return ref, ok
}

// Container returns the node containing g, if any.
func (t *Tree) Container(g GraphRef) (NodeRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.validLocked(g) || t.graphs[g].container == NoNode {
		return NoNode, false
	}
	return t.graphs[g].container, true
}

// NodeInfo returns a snapshot of a live node.
func (t *Tree) NodeInfo(n NodeRef) (NodeInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.liveNodeLocked(n) {
		return NodeInfo{}, false
	}
	r := t.nodes[n]
	return NodeInfo{LocalID: r.localID, Type: r.typ, Owner: r.owner, Subgraph: r.subgraph}, true
}

// AllNodes returns every live node, in creation order.
func (t *Tree) AllNodes() []NodeRef {
	t.mu.RLock()
	defer t.mu.RUnlock()

	refs := make([]NodeRef, 0, len(t.nodes))
	for i, n := range t.nodes {
		if !n.removed {
			refs = append(refs, NodeRef(i))
		}
	}
	return refs
}

// --- Reader ---

// Nodes returns the nodes owned by g in insertion order.
func (t *Tree) Nodes(g GraphRef) []NodeRef {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.validLocked(g) {
		return nil
	}
	out := make([]NodeRef, len(t.graphs[g].nodes))
	copy(out, t.graphs[g].nodes)
	return out
}

// NodeByLocalID finds the node of g with the given local id.
func (t *Tree) NodeByLocalID(g GraphRef, localID int64) (NodeRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.validLocked(g) {
		return NoNode, false
	}
	ref, ok := t.graphs[g].byLocalID[localID]
	return ref, ok
}

// IsRoot returns the root-graph flag of g.
func (t *Tree) IsRoot(g GraphRef) RootFlag {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.validLocked(g) {
		return RootNo
	}
	return t.graphs[g].root
}

// SubgraphID returns the id of g.
func (t *Tree) SubgraphID(g GraphRef) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.validLocked(g) {
		return ""
	}
	return t.graphs[g].subgraphID
}

// Valid reports whether g names a graph record.
func (t *Tree) Valid(g GraphRef) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.validLocked(g)
}

// LocalID returns the id of n within its owner graph.
func (t *Tree) LocalID(n NodeRef) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.liveNodeLocked(n) {
		return -1
	}
	return t.nodes[n].localID
}

// Owner returns the graph owning n.
func (t *Tree) Owner(n NodeRef) GraphRef {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.liveNodeLocked(n) {
		return NoGraph
	}
	return t.nodes[n].owner
}

// Subgraph returns the subgraph contained by n.
func (t *Tree) Subgraph(n NodeRef) (GraphRef, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.liveNodeLocked(n) || t.nodes[n].subgraph == NoGraph {
		return NoGraph, false
	}
	return t.nodes[n].subgraph, true
}

func (t *Tree) validLocked(g GraphRef) bool {
	return g >= 0 && int(g) < len(t.graphs)
}

func (t *Tree) liveNodeLocked(n NodeRef) bool {
	return n >= 0 && int(n) < len(t.nodes) && !t.nodes[n].removed
}
