package router

import (
	"strings"

	"github.com/vango-dev/waypoint/internal/errors"
)

type segmentKind uint8

const (
	segStatic segmentKind = iota
	segTypedParam
	segParam
	segWildcard
)

// segment is one parsed pattern segment.
type segment struct {
	kind  segmentKind
	value string // literal text or parameter name
	typ   string // parameter type; empty for untyped
}

// key is the conflict key: parameter names don't distinguish routes.
func (s segment) key() string {
	switch s.kind {
	case segTypedParam:
		return ":" + s.typ
	case segParam:
		return ":"
	case segWildcard:
		return "*"
	default:
		return s.value
	}
}

func (s segment) String() string {
	switch s.kind {
	case segTypedParam:
		return ":" + s.value + ":" + s.typ
	case segParam:
		return ":" + s.value
	case segWildcard:
		if s.value == WildcardParam {
			return "*"
		}
		return "*" + s.value
	default:
		return s.value
	}
}

// WildcardParam is the params key used by an unnamed "*" segment.
const WildcardParam = "*"

var knownParamTypes = map[string]bool{
	"string": true,
	"int":    true,
	"uint":   true,
	"uuid":   true,
}

// parsePattern splits a relative route path into segments.
func parsePattern(path string) ([]segment, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, nil
	}

	raw := strings.Split(path, "/")
	segs := make([]segment, 0, len(raw))
	for i, part := range raw {
		switch {
		case part == "":
			return nil, errors.New("E100").WithDetailf("empty segment in %q", path)

		case strings.HasPrefix(part, "*"):
			if i != len(raw)-1 {
				return nil, errors.New("E105").WithDetailf("%q", path)
			}
			name := part[1:]
			if name == "" {
				name = WildcardParam
			} else if !validName(name) {
				return nil, errors.New("E100").WithDetailf("bad wildcard name %q in %q", name, path)
			}
			segs = append(segs, segment{kind: segWildcard, value: name})

		case strings.HasPrefix(part, ":"):
			name, typ, _ := strings.Cut(part[1:], ":")
			if !validName(name) {
				return nil, errors.New("E100").WithDetailf("bad parameter name %q in %q", name, path)
			}
			if typ == "" || typ == "string" {
				segs = append(segs, segment{kind: segParam, value: name})
				continue
			}
			if !knownParamTypes[typ] {
				return nil, errors.New("E107").WithDetailf("%q in %q", typ, path)
			}
			segs = append(segs, segment{kind: segTypedParam, value: name, typ: typ})

		default:
			if strings.ContainsAny(part, ":*?#") {
				return nil, errors.New("E100").WithDetailf("reserved character in segment %q", part)
			}
			segs = append(segs, segment{kind: segStatic, value: part})
		}
	}
	return segs, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func joinSegments(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.String()
	}
	return "/" + strings.Join(parts, "/")
}

func joinKeys(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.key()
	}
	return "/" + strings.Join(parts, "/")
}
