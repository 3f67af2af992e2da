// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex matches one segment of a handle, e.g. `mod_out` or `node[3]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

type segment struct {
	name  string
	index int // -1 when no index is present.
}

func parseSegment(raw string) (segment, error) {
	if raw == "" {
		return segment{}, fmt.Errorf("handle contains an empty segment")
	}
	matches := segmentRegex.FindStringSubmatch(raw)
	if matches == nil {
		return segment{}, fmt.Errorf("invalid handle segment: %q", raw)
	}
	seg := segment{name: matches[1], index: -1}
	if matches[2] != "" {
		index, err := strconv.Atoi(matches[2])
		if err != nil {
			return segment{}, fmt.Errorf("invalid index in segment %q: %w", raw, err)
		}
		seg.index = index
	}
	return seg, nil
}

// Parse creates a Handle from its canonical `graph[G].node[N].port` form.
func Parse(raw string) (Handle, error) {
	if raw == "" {
		return Handle{}, fmt.Errorf("handle cannot be empty")
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Handle{}, fmt.Errorf("handle %q must have the form graph[G].node[N].port", raw)
	}

	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		seg, err := parseSegment(p)
		if err != nil {
			return Handle{}, err
		}
		segs = append(segs, seg)
	}

	if segs[0].name != "graph" || segs[0].index < 0 {
		return Handle{}, fmt.Errorf("handle %q: first segment must be graph[G]", raw)
	}
	if segs[1].name != "node" || segs[1].index < 0 {
		return Handle{}, fmt.Errorf("handle %q: second segment must be node[N]", raw)
	}
	if segs[2].index != -1 {
		return Handle{}, fmt.Errorf("handle %q: port segment cannot carry an index", raw)
	}

	return Handle{
		Node: ID{Graph: uint64(segs[0].index), Seq: segs[1].index},
		Port: segs[2].name,
	}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}
