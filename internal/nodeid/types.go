package nodeid

import "errors"

// Separator joins the local ids of a path.
const Separator = ':'

// ErrMalformedPath is returned for identifiers that are not a colon-separated
// list of non-negative decimal integers.
var ErrMalformedPath = errors.New("malformed node path")

// Path is the structured representation of a fully-qualified node identifier.
// It is ordered root to leaf; the last element is the target's local id.
type Path []int64

// Target returns the local id of the addressed node.
// It returns -1 for an empty path.
func (p Path) Target() int64 {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// Prefix returns the chain of container local ids leading to the target's
// graph. It is empty for root-graph nodes.
func (p Path) Prefix() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// IsRoot reports whether the path addresses a node of the root graph.
func (p Path) IsRoot() bool {
	return len(p) == 1
}

// Child returns a new path with localID appended. The receiver is not modified.
func (p Path) Child(localID int64) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, localID)
}
