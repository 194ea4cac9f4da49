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

import "strings"

// stripQuery returns the portion of a raw path before the first '?'.
func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// splitSegments trims leading and trailing separators, collapses repeated
// separators, and splits the path into segments. The root path ("", "/",
// "//") yields an empty slice. It never fails.
func splitSegments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	// Fast path: no duplicate separators to collapse.
	if !strings.Contains(path, "//") {
		return strings.Split(path, "/")
	}

	segments := make([]string, 0, strings.Count(path, "/")+1)
	for segment := range strings.SplitSeq(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// joinSegments is the inverse of splitSegments: it renders segments back into
// a canonical path with a single leading separator. An empty slice yields "/".
func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, segment := range segments {
		sb.WriteByte('/')
		sb.WriteString(segment)
	}
	return sb.String()
}

// normalizePath returns the canonical form of a path: query stripped, repeated
// separators collapsed, no trailing separator, root as "/".
func normalizePath(path string) string {
	return joinSegments(splitSegments(stripQuery(path)))
}

// joinPaths combines a prefix and a relative path, tolerating missing or
// duplicated separators at the boundary. Either side may be empty.
func joinPaths(prefix, path string) string {
	if prefix == "" {
		return path
	}
	if path == "" {
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}

// isParamSegment reports whether the segment declares a named parameter.
func isParamSegment(segment string) bool {
	return strings.HasPrefix(segment, ":")
}

// isWildcardSegment reports whether the segment is the catch-all marker.
func isWildcardSegment(segment string) bool {
	return segment == "*"
}

// isStaticPattern reports whether the pattern contains no parameter or
// wildcard segments, i.e. it is eligible for the static route cache.
func isStaticPattern(segments []string) bool {
	for _, segment := range segments {
		if isParamSegment(segment) || isWildcardSegment(segment) {
			return false
		}
	}
	return true
}

// patternShadows reports whether a pattern would match the given literal
// path. It applies the same precedence-free rules as the trie walk: literal
// segments match by exact text, parameter segments match any single segment,
// and a wildcard matches the entire remainder.
func patternShadows(pattern, literal []string) bool {
	for i, segment := range pattern {
		if isWildcardSegment(segment) {
			return true
		}
		if i >= len(literal) {
			return false
		}
		if isParamSegment(segment) {
			continue
		}
		if segment != literal[i] {
			return false
		}
	}
	return len(pattern) == len(literal)
}
