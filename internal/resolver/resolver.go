package resolver

import (
	"context"

	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
)

// Resolver binds a graph.Reader to its root graph for glue code that resolves
// many nodes against the same tree.
type Resolver struct {
	g    graph.Reader
	root graph.GraphRef
}

// New creates a resolver over g rooted at root.
func New(g graph.Reader, root graph.GraphRef) *Resolver {
	return &Resolver{g: g, root: root}
}

// Reader returns the underlying graph model.
func (r *Resolver) Reader() graph.Reader {
	return r.g
}

// Root returns the root graph every traversal starts from.
func (r *Resolver) Root() graph.GraphRef {
	return r.root
}

// MatchesPath reports whether node is addressed by rawPath.
func (r *Resolver) MatchesPath(ctx context.Context, node graph.NodeRef, rawPath string) (bool, error) {
	return MatchesPath(ctx, r.g, r.root, node, rawPath)
}

// Matches reports whether node is addressed by path.
func (r *Resolver) Matches(ctx context.Context, node graph.NodeRef, path nodeid.Path) bool {
	return Matches(ctx, r.g, r.root, node, path)
}

// ResolvePath returns the canonical path of node.
func (r *Resolver) ResolvePath(ctx context.Context, node graph.NodeRef) string {
	return ResolvePath(ctx, r.g, r.root, node)
}

// Find returns the node addressed by path.
func (r *Resolver) Find(path nodeid.Path) (graph.NodeRef, bool) {
	return Find(r.g, r.root, path)
}

// Index resolves every reachable node.
func (r *Resolver) Index(ctx context.Context) map[string]graph.NodeRef {
	return Index(ctx, r.g, r.root)
}
