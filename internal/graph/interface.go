package graph

// GraphRef is a stable index of a graph record.
type GraphRef int

// NodeRef is a stable index of a node record.
type NodeRef int

const (
	// NoGraph is the zero-value-like sentinel for "no graph".
	NoGraph GraphRef = -1
	// NoNode is the sentinel for "no node".
	NoNode NodeRef = -1
)

// RootFlag reports whether a graph is the root graph. Host metadata may be
// incomplete, so the flag has a third, unknown state.
type RootFlag int8

const (
	// RootUnknown means the host did not say. The resolver treats it as root
	// when matching root-level paths.
	RootUnknown RootFlag = iota
	// RootYes marks the root graph.
	RootYes
	// RootNo marks a subgraph.
	RootNo
)

// String returns a readable representation of the flag.
func (f RootFlag) String() string {
	switch f {
	case RootYes:
		return "root"
	case RootNo:
		return "subgraph"
	default:
		return "unknown"
	}
}

// Reader is the read-only query surface of a graph-of-graphs.
//
// Implementations return zero values (NoGraph, -1, false, nil) for refs they
// do not know rather than panicking; the resolver treats those as a broken
// tree and degrades instead of failing.
type Reader interface {
	// Nodes returns the nodes owned by g in insertion order.
	Nodes(g GraphRef) []NodeRef
	// NodeByLocalID finds the node of g with the given local id.
	NodeByLocalID(g GraphRef, localID int64) (NodeRef, bool)
	// IsRoot returns the root-graph flag of g.
	IsRoot(g GraphRef) RootFlag
	// SubgraphID returns the opaque, globally unique id of g.
	SubgraphID(g GraphRef) string
	// Valid reports whether g names a live graph record.
	Valid(g GraphRef) bool

	// LocalID returns the id of n within its owner graph, or -1.
	LocalID(n NodeRef) int64
	// Owner returns the graph that owns n, or NoGraph.
	Owner(n NodeRef) GraphRef
	// Subgraph returns the subgraph contained by n, if n is a container.
	Subgraph(n NodeRef) (GraphRef, bool)
}
