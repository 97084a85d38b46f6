package resolver

import (
	"context"

	"github.com/specialistvlad/stashgraph/internal/ctxlog"
	"github.com/specialistvlad/stashgraph/internal/graph"
	"github.com/specialistvlad/stashgraph/internal/nodeid"
)

// MatchesPath reports whether node is the node addressed by rawPath.
//
// A malformed path returns false together with an error wrapping
// nodeid.ErrMalformedPath; callers should treat it as "not this node".
func MatchesPath(ctx context.Context, g graph.Reader, root graph.GraphRef, node graph.NodeRef, rawPath string) (bool, error) {
	path, err := nodeid.Parse(rawPath)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Rejecting malformed node path.", "path", rawPath, "error", err)
		return false, err
	}
	return Matches(ctx, g, root, node, path), nil
}

// Matches is MatchesPath for an already parsed path.
func Matches(ctx context.Context, g graph.Reader, root graph.GraphRef, node graph.NodeRef, path nodeid.Path) bool {
	if len(path) == 0 {
		return false
	}
	// Fast rejection: no tree walk unless the leaf id agrees.
	if path.Target() != g.LocalID(node) {
		return false
	}

	owner := g.Owner(node)
	if !g.Valid(owner) {
		return false
	}

	prefix := path.Prefix()
	if len(prefix) == 0 {
		return treatAsRoot(g.IsRoot(owner))
	}

	current, ok := walk(g, root, prefix)
	if !ok {
		ctxlog.FromContext(ctx).Debug("Path does not lead to a subgraph in the current tree.", "path", path.String())
		return false
	}
	return current == owner
}

// treatAsRoot applies the policy for incomplete host metadata: a graph that
// does not say whether it is the root is assumed to be the root.
func treatAsRoot(flag graph.RootFlag) bool {
	return flag == graph.RootYes || flag == graph.RootUnknown
}

// walk follows a chain of container local ids from root and returns the
// subgraph it ends in. It fails on a missing id or a non-container node.
func walk(g graph.Reader, root graph.GraphRef, chain nodeid.Path) (graph.GraphRef, bool) {
	current := root
	for _, id := range chain {
		n, ok := g.NodeByLocalID(current, id)
		if !ok {
			return graph.NoGraph, false
		}
		sub, ok := g.Subgraph(n)
		if !ok || !g.Valid(sub) {
			return graph.NoGraph, false
		}
		current = sub
	}
	return current, true
}

// Find returns the node addressed by path, the inverse of ResolvePath.
func Find(g graph.Reader, root graph.GraphRef, path nodeid.Path) (graph.NodeRef, bool) {
	if len(path) == 0 {
		return graph.NoNode, false
	}
	owner, ok := walk(g, root, path.Prefix())
	if !ok {
		return graph.NoNode, false
	}
	return g.NodeByLocalID(owner, path.Target())
}
