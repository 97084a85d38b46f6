/*
Package nodeid provides a structured representation for the fully-qualified
node identifier shared with the backend process, based on the canonical
format `path`.

The format is a colon-separated sequence of decimal local ids, ordered from
the root graph to the target node, e.g., `54:62:174`. Every id but the last
names a subgraph-container node; the last one names the target inside the
innermost subgraph. A single id, e.g., `73`, addresses a root-graph node.

This package centralizes all formatting and parsing of that identifier so the
resolver, the workflow updater and the push router agree on one wire format.
*/
package nodeid
