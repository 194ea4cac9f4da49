// Copyright 2026 The Balda Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"fmt"
	"strings"
)

// node is one position in a per-method segment trie.
//
// Each node has static children keyed by exact segment text, at most one
// parameter child, and at most one wildcard child. A wildcard is always
// terminal: insertion stops at the wildcard child and lookup captures the
// unconsumed remainder of the path there.
//
// Terminal fields (middleware, handler, and friends) are populated only on
// nodes that end a registered route. A node reached by matching a prefix of
// some longer route carries no handler and is not a match.
//
// Thread safety: the owning Router serializes mutation behind its write lock;
// walks happen under the read lock.
type node struct {
	static   map[string]*node // literal segment -> child
	param    *paramChild      // at most one parameter child per depth
	wildcard *node            // at most one wildcard child, always terminal

	// Terminal route data, set only when this node ends a registered route.
	routeID    uint64
	middleware []HandlerFunc
	handler    HandlerFunc
	cache      *CacheDirective
	pattern    string
}

// paramChild pairs the single parameter child of a node with its declared
// name. Two different names cannot coexist at the same depth under one
// parent; see ErrParamConflict.
type paramChild struct {
	name string
	node *node
}

// insert descends the trie along the pattern segments, creating nodes as
// needed, and returns the terminal node for the pattern. It does not set
// terminal route data; the caller does, so that re-registration of the same
// pattern updates the existing terminal in place.
//
// A wildcard segment ends the descent: anything after it in the pattern is
// ignored, matching the rule that a wildcard must be the last segment.
func (n *node) insert(segments []string) (*node, error) {
	current := n
	for _, segment := range segments {
		switch {
		case isWildcardSegment(segment):
			if current.wildcard == nil {
				current.wildcard = &node{}
			}
			return current.wildcard, nil

		case isParamSegment(segment):
			name := segment[1:]
			if name == "" {
				return nil, ErrEmptyParamName
			}
			if current.param == nil {
				current.param = &paramChild{name: name, node: &node{}}
			} else if current.param.name != name {
				return nil, fmt.Errorf("%w: %q vs %q", ErrParamConflict, current.param.name, name)
			}
			current = current.param.node

		default:
			if current.static == nil {
				current.static = make(map[string]*node, 4)
			}
			child, ok := current.static[segment]
			if !ok {
				child = &node{}
				current.static[segment] = child
			}
			current = child
		}
	}
	return current, nil
}

// setRoute populates the terminal route data on a node. Re-registration
// replaces every field, so stale metadata from a previous registration of the
// same pattern cannot linger.
func (n *node) setRoute(rt *Route) {
	n.routeID = rt.ID
	n.middleware = rt.Middleware
	n.handler = rt.wrapped
	n.cache = rt.Cache
	n.pattern = rt.Path
}

// paramNamesOf extracts the declared parameter names of a pattern in order,
// with the wildcard reported under its capture key "*".
func paramNamesOf(pattern string) []string {
	var names []string
	for _, segment := range splitSegments(pattern) {
		switch {
		case isWildcardSegment(segment):
			names = append(names, "*")
		case isParamSegment(segment):
			names = append(names, segment[1:])
		}
	}
	return names
}

// walk matches the given path segments against the trie and returns the
// terminal node plus any captured parameters.
//
// At each depth the precedence is: exact static child, then the parameter
// child (capturing the segment under its name), then the wildcard child
// (capturing the joined remainder under "*" and stopping). There is no
// backtracking: once a static child consumes a segment, sibling parameter
// routes are not reconsidered on a later mismatch.
//
// The params map is allocated lazily; a purely literal match returns nil
// params, which the router uses to detect cacheable resolutions.
func (n *node) walk(segments []string) (*node, map[string]string) {
	current := n
	var params map[string]string

	for i, segment := range segments {
		if child, ok := current.static[segment]; ok {
			current = child
			continue
		}
		if current.param != nil {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[current.param.name] = segment
			current = current.param.node
			continue
		}
		if current.wildcard != nil {
			if params == nil {
				params = make(map[string]string, 1)
			}
			params["*"] = strings.Join(segments[i:], "/")
			return current.wildcard, params
		}
		return nil, nil
	}
	return current, params
}

// terminal reports whether the node ends a registered route. A bare prefix
// node carries no handler and is not a match.
func (n *node) terminal() bool {
	return n != nil && n.handler != nil
}
