package nodeid

import (
	"slices"
	"strconv"
	"strings"
)

// String serializes the Path into its canonical string representation.
func (p Path) String() string {
	var sb strings.Builder
	for i, id := range p {
		if i > 0 {
			sb.WriteRune(Separator)
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}

// Equal checks whether two paths address the same node.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// FormatLocalID renders a bare local id, the form used for root-graph nodes.
func FormatLocalID(id int64) string {
	return strconv.FormatInt(id, 10)
}
