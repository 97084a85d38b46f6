package resolver

import (
	"context"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
)

// ResolvePath returns the canonical path string of node.
//
// When no container chain leads to the node's owner graph, it falls back to
// the bare local id and logs a warning. The fallback is ambiguous by nature;
// callers must treat the result as best effort. A node the reader does not
// know (removed, or a stale ref) has no local id to fall back to; the result
// is then the empty string, which no path parses as.
func ResolvePath(ctx context.Context, g graph.Reader, root graph.GraphRef, node graph.NodeRef) string {
	logger := ctxlog.FromContext(ctx)
	localID := g.LocalID(node)
	owner := g.Owner(node)
	if localID < 0 || !g.Valid(owner) {
		logger.Warn("Could not resolve subgraph path for node: owner graph unknown.", "node", node)
		return ""
	}
	if owner == root || g.IsRoot(owner) == graph.RootYes {
		return nodeid.FormatLocalID(localID)
	}

	target := g.SubgraphID(owner)
	chain, ok := findChain(g, root, target)
	if !ok {
		logger.Warn("Could not resolve subgraph path for node.", "local_id", localID, "subgraph_id", target)
		return nodeid.FormatLocalID(localID)
	}

	path := chain.Child(localID).String()
	logger.Debug("Resolved node path.", "path", path)
	return path
}

// frame is one level of the explicit depth-first search stack.
type frame struct {
	nodes []graph.NodeRef
	next  int
	chain nodeid.Path
}

// findChain searches for the container chain whose terminal subgraph has the
// given id. Nodes are visited in insertion order; a container's own subgraph
// is checked before its contents, and its contents before the next sibling.
func findChain(g graph.Reader, root graph.GraphRef, target string) (nodeid.Path, bool) {
	visited := map[graph.GraphRef]struct{}{root: {}}
	stack := []*frame{{nodes: g.Nodes(root)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.nodes[top.next]
		top.next++

		sub, ok := g.Subgraph(n)
		if !ok || !g.Valid(sub) {
			continue
		}
		chain := top.chain.Child(g.LocalID(n))
		if g.SubgraphID(sub) == target {
			return chain, true
		}
		// A Reader that violates the tree invariant must not loop forever.
		if _, seen := visited[sub]; seen {
			continue
		}
		visited[sub] = struct{}{}
		stack = append(stack, &frame{nodes: g.Nodes(sub), chain: chain})
	}
	return nil, false
}

// Index resolves every node reachable from root in a single pre-order pass.
// The result agrees with ResolvePath for each of them.
func Index(ctx context.Context, g graph.Reader, root graph.GraphRef) map[string]graph.NodeRef {
	index := make(map[string]graph.NodeRef)
	visited := map[graph.GraphRef]struct{}{root: {}}
	stack := []*frame{{nodes: g.Nodes(root)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.nodes[top.next]
		top.next++

		chain := top.chain.Child(g.LocalID(n))
		key := chain.String()
		if _, dup := index[key]; !dup {
			index[key] = n
		}

		sub, ok := g.Subgraph(n)
		if !ok || !g.Valid(sub) {
			continue
		}
		if _, seen := visited[sub]; seen {
			continue
		}
		visited[sub] = struct{}{}
		stack = append(stack, &frame{nodes: g.Nodes(sub), chain: chain})
	}

	ctxlog.FromContext(ctx).Debug("Indexed node paths.", "count", len(index))
	return index
}
