// Package resolver translates between a node handle in a graph-of-graphs and
// its fully-qualified path identifier (see package nodeid).
//
// Two directions are supported:
//
//   - MatchesPath checks whether a node is the one a path string addresses.
//     It rejects on the target local id before touching the tree, then walks
//     the container chain down from the root.
//   - ResolvePath computes a node's canonical path with a pre-order,
//     depth-first, first-match-wins search for the chain of containers leading
//     to the node's owner graph.
//
// Both are pure reads of a graph.Reader snapshot and never panic or return an
// error for a structurally broken tree: matching yields false and resolving
// degrades to the bare local id with a warning. Every traversal takes the root
// graph as an explicit argument.
package resolver
