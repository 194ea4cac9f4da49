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
	"balda.dev/router/schema"
)

// Route is one entry in the route registry: the declared method and pattern
// plus everything registered against them. The registry is ordered and
// updated in place, so registering the same method+pattern twice replaces the
// entry's fields without changing its position or ID.
type Route struct {
	// ID is a stable identifier assigned at first registration and preserved
	// across updates. Auxiliary metadata (response schemas, patterns) is
	// keyed by ID rather than by handler identity, so wrapping a handler does
	// not orphan its metadata.
	ID uint64

	// Method is the upper-cased HTTP method.
	Method string

	// Path is the normalized pattern as declared, e.g. "/users/:id".
	Path string

	// Middleware is the ordered middleware chain for the route.
	Middleware []HandlerFunc

	// Handler is the handler as registered, before any validation wrapping.
	Handler HandlerFunc

	// Docs carries optional documentation metadata.
	Docs *Docs

	// Cache is the optional cache directive (GET routes only).
	Cache *CacheDirective

	// wrapped is the handler actually stored on trie nodes: the registered
	// handler, wrapped with request validation when schemas are present.
	wrapped HandlerFunc

	requests  *schema.RequestSchemas
	responses *schema.ResponseSchemas
}

// RequestSchemas returns the compiled request validation schemas, if any.
func (r *Route) RequestSchemas() *schema.RequestSchemas {
	return r.requests
}

// ResponseSchemas returns the compiled response schemas, if any.
func (r *Route) ResponseSchemas() *schema.ResponseSchemas {
	return r.responses
}

// ParamNames returns the route's declared parameter names in path order, with
// a trailing wildcard reported as "*". Nil for purely literal routes.
func (r *Route) ParamNames() []string {
	return paramNamesOf(r.Path)
}

// Docs is optional documentation metadata attached to a route, consumed by
// documentation generators iterating Routes().
type Docs struct {
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
}

// Match is the resolved result of a lookup: everything the dispatcher needs
// to run the request. The router never executes anything itself; it hands the
// ordered middleware and handler back to the caller.
type Match struct {
	// Middleware is the ordered middleware chain, to be run before Handler.
	Middleware []HandlerFunc

	// Handler is the terminal handler (validation-wrapped when the route
	// declares request schemas).
	Handler HandlerFunc

	// Params maps parameter names to captured path values. The wildcard
	// remainder is stored under "*". Nil for routes without parameters.
	Params map[string]string

	// Responses carries the route's compiled response schemas, if any.
	Responses *schema.ResponseSchemas

	// Cache carries the route's cache directive, if any.
	Cache *CacheDirective

	// Pattern is the declared route pattern, e.g. "/users/:id".
	Pattern string

	// RouteID identifies the registry entry that produced this match.
	RouteID uint64
}

// routeConfig collects per-route registration options.
type routeConfig struct {
	middleware []HandlerFunc
	body       any
	query      any
	hasSchemas bool
	responses  map[int]any
	docs       *Docs
	cache      *CacheDirective
}

// RouteOption configures a single route registration.
type RouteOption func(*routeConfig)

// WithMiddleware sets the route's middleware chain, run in the given order
// before the handler.
func WithMiddleware(middleware ...HandlerFunc) RouteOption {
	return func(cfg *routeConfig) {
		cfg.middleware = append(cfg.middleware, middleware...)
	}
}

// WithRequestSchemas declares request validation schemas as struct
// prototypes. The body prototype is validated against the decoded JSON body;
// the query prototype is bound from URL query parameters via `query` tags.
// Either may be nil. The handler stored for the route is wrapped so that
// validation runs before it; failures produce a 400 response and the handler
// never runs.
func WithRequestSchemas(body, query any) RouteOption {
	return func(cfg *routeConfig) {
		cfg.body = body
		cfg.query = query
		cfg.hasSchemas = body != nil || query != nil
	}
}

// WithResponses declares per-status response schemas as struct prototypes.
// They are compiled once and attached to every match of the route.
func WithResponses(byStatus map[int]any) RouteOption {
	return func(cfg *routeConfig) {
		cfg.responses = byStatus
	}
}

// WithDocs attaches documentation metadata to the route.
func WithDocs(docs Docs) RouteOption {
	return func(cfg *routeConfig) {
		cfg.docs = &docs
	}
}

// WithCacheDirective attaches a cache directive to the route. Only legal on
// GET routes; registration fails with ErrCacheDirectiveMethod otherwise.
func WithCacheDirective(directive CacheDirective) RouteOption {
	return func(cfg *routeConfig) {
		cfg.cache = &directive
	}
}
