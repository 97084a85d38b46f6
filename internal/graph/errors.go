package graph

import "errors"

var (
	// ErrUnknownGraph is returned when a GraphRef does not name a live graph.
	ErrUnknownGraph = errors.New("unknown graph")
	// ErrUnknownNode is returned when a NodeRef does not name a live node.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateLocalID is returned when a graph already owns a node with the same local id.
	ErrDuplicateLocalID = errors.New("duplicate local id")
	// ErrDuplicateSubgraphID is returned when a subgraph id is already registered.
	ErrDuplicateSubgraphID = errors.New("duplicate subgraph id")
	// ErrSubgraphShared is returned when a subgraph already has a container node.
	ErrSubgraphShared = errors.New("subgraph already has a container")
	// ErrAlreadyContainer is returned when a node already contains a subgraph.
	ErrAlreadyContainer = errors.New("node already contains a subgraph")
	// ErrCycle is returned when attaching a subgraph would make it its own ancestor.
	ErrCycle = errors.New("subgraph attachment would create a cycle")
	// ErrInvalidLocalID is returned for negative local ids.
	ErrInvalidLocalID = errors.New("local id must not be negative")
)
