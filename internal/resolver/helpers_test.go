package resolver

import (
	"github.com/specialistvlad/stashgraph/internal/graph"
)

// countingReader wraps a Reader and counts structural lookups.
type countingReader struct {
	graph.Reader
	lookups int
}

func (c *countingReader) NodeByLocalID(g graph.GraphRef, id int64) (graph.NodeRef, bool) {
	c.lookups++
	return c.Reader.NodeByLocalID(g, id)
}

func (c *countingReader) Nodes(g graph.GraphRef) []graph.NodeRef {
	c.lookups++
	return c.Reader.Nodes(g)
}

// danglingReader reports a subgraph for one node that the tree does not know.
type danglingReader struct {
	graph.Reader
	node graph.NodeRef
}

func (d *danglingReader) Subgraph(n graph.NodeRef) (graph.GraphRef, bool) {
	if n == d.node {
		return graph.GraphRef(10_000), true
	}
	return d.Reader.Subgraph(n)
}

// loopReader makes one subgraph's only container appear inside itself.
type loopReader struct {
	graph.Reader
	inside graph.GraphRef
	extra  graph.NodeRef
}

func (l *loopReader) Nodes(g graph.GraphRef) []graph.NodeRef {
	nodes := l.Reader.Nodes(g)
	if g == l.inside {
		nodes = append(nodes, l.extra)
	}
	return nodes
}
