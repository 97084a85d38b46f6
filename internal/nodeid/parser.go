package nodeid

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse creates a new Path by parsing its canonical string representation.
func Parse(rawID string) (Path, error) {
	if rawID == "" {
		return nil, fmt.Errorf("%w: identifier cannot be empty", ErrMalformedPath)
	}

	segments := strings.Split(rawID, string(Separator))
	path := make(Path, 0, len(segments))
	for _, segmentStr := range segments {
		if segmentStr == "" {
			return nil, fmt.Errorf("%w: %q contains an empty segment", ErrMalformedPath, rawID)
		}
		// strconv accepts a leading sign; the wire format does not.
		if segmentStr[0] == '+' || segmentStr[0] == '-' {
			return nil, fmt.Errorf("%w: invalid segment %q", ErrMalformedPath, segmentStr)
		}

		id, err := strconv.ParseInt(segmentStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid segment %q", ErrMalformedPath, segmentStr)
		}
		path = append(path, id)
	}

	return path, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(rawID string) Path {
	p, err := Parse(rawID)
	if err != nil {
		panic(err)
	}
	return p
}
