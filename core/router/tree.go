package router

// Radix tree derived from the chi routing tree (itself based on
// armon/go-radix, MIT licensed). Each method owns a separate tree and every
// leaf carries at most one route.

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

type nodeTyp uint8

const (
	ntStatic   nodeTyp = iota // /home
	ntRegexp                  // /{id:[0-9]+}
	ntParam                   // /{user}
	ntCatchAll                // /files/*
)

type node struct {
	// route bound to this leaf, nil for inner nodes
	route *route

	// compiled matcher of a regexp node
	rex *regexp.Regexp

	// static prefix, or the regexp source for regexp nodes
	prefix string

	// children grouped by node type, in match priority order
	children [ntCatchAll + 1]nodes

	// byte terminating a param segment
	tail byte

	typ nodeTyp

	// first byte of the prefix
	label byte
}

// insert binds r under pattern and panics with ErrDuplicateRoute when the
// pattern is structurally identical to an existing one.
func (n *node) insert(pattern string, r *route) {
	var parent *node
	search := pattern

	for {
		if search == "" {
			n.bind(r)
			return
		}

		label := search[0]
		var (
			segTyp    nodeTyp
			segRexpat string
			segTail   byte
			segEnd    int
		)
		if label == '{' || label == '*' {
			segTyp, _, segRexpat, segTail, _, segEnd = nextSegment(search)
		}

		var rexPrefix string
		if segTyp == ntRegexp {
			rexPrefix = segRexpat
		}

		parent = n
		n = n.edge(segTyp, label, segTail, rexPrefix)

		if n == nil {
			leaf := parent.addChild(&node{label: label, tail: segTail, prefix: search}, search)
			leaf.bind(r)
			return
		}

		// Wildcard edges already exist in full; skip past the segment.
		if n.typ > ntStatic {
			search = search[segEnd:]
			continue
		}

		common := longestPrefix(search, n.prefix)
		if common == len(n.prefix) {
			search = search[common:]
			continue
		}

		// Split the static node at the shared prefix.
		split := &node{typ: ntStatic, prefix: search[:common]}
		parent.replaceChild(search[0], segTail, split)

		n.label = n.prefix[common]
		n.prefix = n.prefix[common:]
		split.addChild(n, n.prefix)

		search = search[common:]
		if search == "" {
			split.bind(r)
			return
		}

		leaf := split.addChild(&node{typ: ntStatic, label: search[0], prefix: search}, search)
		leaf.bind(r)
		return
	}
}

// addChild attaches child keyed by prefix and returns the node that ends
// the prefix.
func (n *node) addChild(child *node, prefix string) *node {
	search := prefix
	leaf := child

	segTyp, _, segRexpat, segTail, segStart, segEnd := nextSegment(search)

	if segTyp != ntStatic {
		if segTyp == ntRegexp {
			rex, err := regexp.Compile(segRexpat)
			if err != nil {
				panic(fmt.Errorf("%w: '%s'", ErrInvalidRegexp, segRexpat))
			}
			child.prefix = segRexpat
			child.rex = rex
		}

		switch {
		case segStart == 0:
			// The prefix opens with a wildcard segment.
			child.typ = segTyp
			child.tail = segTail

			rest := segEnd
			if segTyp == ntCatchAll {
				rest = len(search)
			}
			if rest != len(search) {
				search = search[rest:]
				leaf = child.addChild(&node{typ: ntStatic, label: search[0], prefix: search}, search)
			}

		default:
			// Static text first, wildcard after.
			child.typ = ntStatic
			child.prefix = search[:segStart]
			child.rex = nil

			search = search[segStart:]
			leaf = child.addChild(&node{typ: segTyp, label: search[0], tail: segTail}, search)
		}
	}

	n.children[child.typ] = append(n.children[child.typ], child)
	n.children[child.typ].sort()
	return leaf
}

func (n *node) replaceChild(label, tail byte, child *node) {
	group := n.children[child.typ]
	for i := range group {
		if group[i].label == label && group[i].tail == tail {
			group[i] = child
			group[i].label = label
			group[i].tail = tail
			return
		}
	}
	panic(ErrMissingChild)
}

func (n *node) edge(typ nodeTyp, label, tail byte, prefix string) *node {
	for _, c := range n.children[typ] {
		if c.label != label || c.tail != tail {
			continue
		}
		if typ == ntRegexp && c.prefix != prefix {
			continue
		}
		return c
	}
	return nil
}

func (n *node) bind(r *route) {
	if n.route != nil {
		panic(fmt.Errorf("%w: %s %s conflicts with %s", ErrDuplicateRoute, r.method, r.pattern, n.route.pattern))
	}
	n.route = r
}

// lookup matches the escaped path and returns the route with its raw
// captured segment values in pattern order.
func (n *node) lookup(path string) (*route, []string) {
	leaf, values := n.match(path, make([]string, 0, 4))
	if leaf == nil {
		return nil, nil
	}
	return leaf.route, values
}

// match tries children in priority order: static, regexp, param, catch-all.
func (n *node) match(path string, values []string) (*node, []string) {
	for t, group := range n.children {
		if len(group) == 0 {
			continue
		}

		switch nodeTyp(t) {
		case ntStatic:
			if path == "" {
				continue
			}
			c := group.findEdge(path[0])
			if c == nil || !strings.HasPrefix(path, c.prefix) {
				continue
			}
			if leaf, vals := c.descend(path[len(c.prefix):], values); leaf != nil {
				return leaf, vals
			}

		case ntParam, ntRegexp:
			if path == "" {
				continue
			}
			for _, c := range group {
				end := strings.IndexByte(path, c.tail)
				if end < 0 {
					if c.tail != '/' {
						continue
					}
					end = len(path)
				}
				seg := path[:end]
				if seg == "" {
					continue
				}
				if c.rex != nil {
					if !c.rex.MatchString(seg) {
						continue
					}
				} else if strings.IndexByte(seg, '/') >= 0 {
					continue
				}
				if leaf, vals := c.descend(path[end:], append(values, seg)); leaf != nil {
					return leaf, vals
				}
			}

		case ntCatchAll:
			c := group[0]
			if c.route != nil {
				return c, append(values, path)
			}
		}
	}
	return nil, nil
}

func (n *node) descend(rest string, values []string) (*node, []string) {
	if rest == "" && n.route != nil {
		return n, values
	}
	return n.match(rest, values)
}

// nextSegment returns the next wildcard segment of pattern: node type, param
// key, anchored regexp source, tail byte, start index and end index.
func nextSegment(pattern string) (nodeTyp, string, string, byte, int, int) {
	ps := strings.Index(pattern, "{")
	ws := strings.Index(pattern, "*")

	if ps < 0 && ws < 0 {
		return ntStatic, "", "", 0, 0, len(pattern)
	}
	if ps >= 0 && ws >= 0 && ws < ps {
		panic(fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern))
	}

	if ps < 0 {
		if ws < len(pattern)-1 {
			panic(fmt.Errorf("%w: '%s'", ErrWildcardPosition, pattern))
		}
		return ntCatchAll, "*", "", 0, ws, len(pattern)
	}

	// Find the matching close brace, allowing braces inside a regexp.
	depth, pe := 0, -1
	for i, c := range pattern[ps:] {
		if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				pe = ps + i
				break
			}
		}
	}
	if pe < 0 {
		panic(fmt.Errorf("%w: '%s'", ErrParamDelimiter, pattern))
	}

	typ := ntParam
	key, rexpat, isRegexp := strings.Cut(pattern[ps+1:pe], ":")
	if key == "" {
		panic(fmt.Errorf("%w: empty parameter name in '%s'", ErrInvalidPattern, pattern))
	}
	if isRegexp {
		typ = ntRegexp
		if !strings.HasPrefix(rexpat, "^") {
			rexpat = "^" + rexpat
		}
		if !strings.HasSuffix(rexpat, "$") {
			rexpat += "$"
		}
	}

	pe++
	tail := byte('/')
	if pe < len(pattern) {
		tail = pattern[pe]
	}
	return typ, key, rexpat, tail, ps, pe
}

// paramKeys lists the capture names of pattern in order.
func paramKeys(pattern string) []string {
	var keys []string
	for pat := pattern; ; {
		typ, key, _, _, _, end := nextSegment(pat)
		if typ == ntStatic {
			return keys
		}
		for _, k := range keys {
			if k == key {
				panic(fmt.Errorf("%w: '%s' has duplicate key '%s'", ErrDuplicateParam, pattern, key))
			}
		}
		keys = append(keys, key)
		pat = pat[end:]
	}
}

func longestPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func unescape(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if u, err := url.PathUnescape(v); err == nil {
			out[i] = u
		} else {
			out[i] = v
		}
	}
	return out
}

type nodes []*node

func (ns nodes) sort()              { sort.Sort(ns); ns.tailSort() }
func (ns nodes) Len() int           { return len(ns) }
func (ns nodes) Swap(i, j int)      { ns[i], ns[j] = ns[j], ns[i] }
func (ns nodes) Less(i, j int) bool { return ns[i].label < ns[j].label }

// tailSort moves the param node terminated by '/' to the end so
// narrower delimiters are tried first.
func (ns nodes) tailSort() {
	for i := len(ns) - 1; i >= 0; i-- {
		if ns[i].typ > ntStatic && ns[i].tail == '/' {
			ns.Swap(i, len(ns)-1)
			return
		}
	}
}

func (ns nodes) findEdge(label byte) *node {
	i, j := 0, len(ns)-1
	for i <= j {
		mid := i + (j-i)/2
		switch {
		case label > ns[mid].label:
			i = mid + 1
		case label < ns[mid].label:
			j = mid - 1
		default:
			return ns[mid]
		}
	}
	return nil
}
