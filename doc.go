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

// Package router implements an HTTP request router built around a per-method
// segment trie with a static-route fast path.
//
// Routes are registered against an explicit Router value; there is no global
// registry. Each registration maps an (HTTP method, path pattern) pair to a
// terminal handler, an ordered middleware chain, and optional per-route
// metadata: request validation schemas, response schemas, documentation, and
// a cache directive. Registering the same method and pattern twice is an
// update, not an error.
//
// Path patterns support three segment kinds:
//
//   - static segments matched by exact text: /users/profile
//   - parameter segments capturing one segment: /users/:id
//   - a terminal wildcard capturing the rest of the path: /files/*
//
// Lookup prefers static children, then the single parameter child, then the
// wildcard child; there is no backtracking, so matching cost is linear in the
// number of path segments. Routes whose patterns contain no parameter or
// wildcard segments are additionally served from an O(1) static route cache
// keyed by "METHOD:/path".
//
// Basic usage:
//
//	r := router.MustNew()
//	r.MustHandle(http.MethodGet, "/users/:id", func(c *router.Context) {
//	    c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	})
//	http.ListenAndServe(":8080", r)
//
// The router can also be used purely as a matching structure: Find returns
// the resolved middleware chain, handler and extracted parameters without
// executing anything, leaving dispatch to the caller.
package router
