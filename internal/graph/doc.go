// Package graph models the host editor's graph-of-graphs: a single root graph
// whose nodes may contain subgraphs, whose nodes may in turn contain further
// subgraphs.
//
// # Why Graph Package Exists
//
// The identity resolver must query the host's graph structure without owning
// it. This package splits that concern in two, the same way a store is split
// from its consumers:
//
//   - **Reader** (interface.go): the read-only query surface the resolver
//     consumes. Any host model can satisfy it.
//   - **Tree** (tree.go): the reference implementation, an arena of graph
//     records and an arena of node records referencing each other by stable
//     integer index.
//
// # Arena Layout
//
//	 graphs []graphRecord            nodes []nodeRecord
//	┌──────────────────────┐        ┌───────────────────────┐
//	│ 0: root   nodes=[0,1]│◄───────┤ 0: id=54 owner=0 sub=1│
//	│ 1: S1     nodes=[2]  │◄──┐    │ 1: id=73 owner=0 sub=-│
//	│ 2: S2     nodes=[3]  │◄┐ └────┤ 2: id=62 owner=1 sub=2│
//	└──────────────────────┘ └──────┤ 3: id=174 owner=2     │
//	                                └───────────────────────┘
//
// Back references (owner graph, containing node) are indexes, so there are no
// pointer cycles to manage and a removed node simply leaves a tombstone.
//
// # Invariants
//
// The Tree enforces what the resolver relies on: local ids are unique within a
// graph, a subgraph has at most one container node, and attaching a subgraph
// never creates a cycle. Subgraphs whose container was removed stay in the
// arena but become unreachable from the root.
//
// # Thread-Safety
//
// Tree methods are safe for concurrent use. Each call observes a consistent
// snapshot; a traversal spanning several calls does not.
package graph
