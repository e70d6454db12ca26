package router

import (
	"strings"

	"github.com/vango-dev/waypoint/pkg/routepath"
)

// candidate is a complete match found while searching the table.
type candidate struct {
	leaf    *node
	layouts []*node
	score   []segmentKind
	params  Params
}

// better reports whether score a is more specific than b. A score without a
// wildcard always beats one with a wildcard. Otherwise scores compare segment
// by segment; when one is a prefix of the other the shorter wins.
func better(a, b []segmentKind) bool {
	if wa, wb := hasWildcard(a), hasWildcard(b); wa != wb {
		return wb
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func hasWildcard(score []segmentKind) bool {
	for _, k := range score {
		if k == segWildcard {
			return true
		}
	}
	return false
}

// Match resolves path against the table. path may be un-canonical; it is
// cleaned first and the canonical form is reported in Match.Path. ok is false
// when nothing matches or the path cannot be canonicalized.
func (t *Table) Match(path string) (*Match, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	res, err := routepath.Canonicalize(path)
	if err != nil {
		return nil, false
	}

	s := &search{segs: routepath.Segments(res.Path)}
	s.walk(t.roots, 0, nil, nil, Params{})
	if s.best == nil {
		return nil, false
	}

	best := s.best
	m := &Match{
		Route:   best.leaf.route,
		Params:  best.params,
		Pattern: best.leaf.pattern,
		Path:    res.Path,
	}
	for _, l := range best.layouts {
		if l.route.Layout == nil {
			continue
		}
		m.Layouts = append(m.Layouts, MatchedLayout{
			Name:    l.route.Name,
			Pattern: l.pattern,
			Handler: l.route.Layout,
		})
	}
	return m, true
}

type search struct {
	segs []string
	best *candidate
}

func (s *search) walk(nodes []*node, pos int, score []segmentKind, layouts []*node, params Params) {
	for _, n := range nodes {
		consumed, kinds, captured, ok := s.consume(n.segs, pos)
		if !ok {
			continue
		}

		nextScore := append(append(make([]segmentKind, 0, len(score)+len(kinds)), score...), kinds...)
		nextParams := params
		if len(captured) > 0 {
			nextParams = make(Params, len(params)+len(captured))
			for k, v := range params {
				nextParams[k] = v
			}
			for k, v := range captured {
				nextParams[k] = v
			}
		}

		if n.isLayout() {
			nextLayouts := append(append(make([]*node, 0, len(layouts)+1), layouts...), n)
			s.walk(n.children, pos+consumed, nextScore, nextLayouts, nextParams)
			continue
		}

		if pos+consumed != len(s.segs) {
			continue
		}
		if s.best == nil || better(nextScore, s.best.score) {
			s.best = &candidate{leaf: n, layouts: layouts, score: nextScore, params: nextParams}
		}
	}
}

// consume matches pattern segments against the request starting at pos.
func (s *search) consume(pattern []segment, pos int) (int, []segmentKind, Params, bool) {
	var (
		kinds    = make([]segmentKind, 0, len(pattern))
		captured Params
		i        = pos
	)
	for _, p := range pattern {
		if p.kind == segWildcard {
			rest := make([]string, 0, len(s.segs)-i)
			for _, raw := range s.segs[i:] {
				v, err := routepath.DecodeSegment(raw, true)
				if err != nil {
					return 0, nil, nil, false
				}
				rest = append(rest, v)
			}
			if captured == nil {
				captured = Params{}
			}
			captured[p.value] = strings.Join(rest, "/")
			kinds = append(kinds, segWildcard)
			i = len(s.segs)
			break
		}

		if i >= len(s.segs) {
			return 0, nil, nil, false
		}
		v, err := routepath.DecodeSegment(s.segs[i], false)
		if err != nil {
			return 0, nil, nil, false
		}

		switch p.kind {
		case segStatic:
			if v != p.value {
				return 0, nil, nil, false
			}
		case segTypedParam, segParam:
			if v == "" || ValidateParam(v, p.typ) != nil {
				return 0, nil, nil, false
			}
			if captured == nil {
				captured = Params{}
			}
			captured[p.value] = v
		}
		kinds = append(kinds, p.kind)
		i++
	}
	return i - pos, kinds, captured, true
}
