// Package workflow reads and patches editor workflow documents, the JSON
// form in which the host persists its graph-of-graphs.
//
// A document lists the root graph's nodes under "nodes" and every subgraph
// definition under "definitions.subgraphs". A node is a subgraph container
// when its "type" equals the id of one of those definitions. The package
// keeps the document as raw JSON values so unknown fields survive a
// decode/patch/encode cycle untouched.
package workflow
