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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"balda.dev/router/schema"
)

// Router matches HTTP requests to registered handlers. Lookups walk a
// per-method segment trie, with purely literal routes short-circuited through
// a static cache. Registration is idempotent: re-registering a method+pattern
// updates the existing registry entry in place.
//
// A single RWMutex guards the trees and registry. Lookups take the read lock;
// registration, retrofit and reset take the write lock. The static cache has
// its own lock and is safe on its own.
type Router struct {
	mu    sync.RWMutex
	trees methodTrees
	cache *staticCache

	registry      []*Route
	byKey         map[string]*Route
	patternByID   map[uint64]string
	responsesByID map[uint64]*schema.ResponseSchemas
	nextID        uint64

	// middleware registered via Use, prepended to routes registered later.
	middleware []HandlerFunc

	basePath string
	logger   *slog.Logger
	recorder ObservabilityRecorder
	noRoute  HandlerFunc
	h2c      bool
	timeouts serverTimeouts

	serverMu sync.Mutex
	server   *http.Server
}

// Option configures a Router at construction time.
type Option func(*Router)

// WithLogger sets the structured logger used by the router and exposed to
// handlers via Context.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithBasePath prefixes every registered pattern with the given path.
func WithBasePath(basePath string) Option {
	return func(r *Router) {
		r.basePath = basePath
	}
}

// WithObservability installs a recorder notified at request start and end.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.recorder = recorder
	}
}

// WithNoRoute sets the handler run when no route matches. The default writes
// a plain 404.
func WithNoRoute(handler HandlerFunc) Option {
	return func(r *Router) {
		r.noRoute = handler
	}
}

// WithH2C enables cleartext HTTP/2 on Serve.
func WithH2C() Option {
	return func(r *Router) {
		r.h2c = true
	}
}

// WithReadTimeout sets the server read timeout used by Serve and ServeTLS.
func WithReadTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.timeouts.read = d
	}
}

// WithWriteTimeout sets the server write timeout used by Serve and ServeTLS.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.timeouts.write = d
	}
}

// WithIdleTimeout sets the server idle timeout used by Serve and ServeTLS.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.timeouts.idle = d
	}
}

// New creates a Router with the given options. It returns an error when an
// option carries an invalid value.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		cache:         newStaticCache(),
		byKey:         make(map[string]*Route),
		patternByID:   make(map[uint64]string),
		responsesByID: make(map[uint64]*schema.ResponseSchemas),
		logger:        noopLogger,
		timeouts:      defaultServerTimeouts(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like New but panics on error. Intended for static configuration
// known to be valid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router: invalid configuration: %v", err))
	}
	return r
}

func (r *Router) validate() error {
	var errs []error
	if r.basePath != "" && !strings.HasPrefix(r.basePath, "/") {
		errs = append(errs, fmt.Errorf("%w: %q must start with /", ErrInvalidBasePath, r.basePath))
	}
	if r.timeouts.read < 0 || r.timeouts.write < 0 || r.timeouts.idle < 0 {
		errs = append(errs, fmt.Errorf("%w: timeouts must not be negative", ErrServerTimeoutInvalid))
	}
	return errors.Join(errs...)
}

// Use appends middleware to the global chain. The chain is prepended to every
// route registered afterwards; call ApplyGlobalMiddleware to retrofit routes
// registered before.
func (r *Router) Use(middleware ...HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, middleware...)
}

// Handle registers handler for method and path, replacing any previous
// registration of the same method and normalized pattern in place. Path
// parameters are declared as ":name" segments and a trailing "*" captures the
// rest of the path.
func (r *Router) Handle(method, path string, handler HandlerFunc, opts ...RouteOption) error {
	if handler == nil {
		return fmt.Errorf("%w: %s %s", ErrNilHandler, method, path)
	}
	if method == "" {
		return fmt.Errorf("%w: path %s", ErrEmptyMethod, path)
	}
	method = strings.ToUpper(method)

	var cfg routeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cache != nil && method != http.MethodGet {
		return fmt.Errorf("%w: %s %s", ErrCacheDirectiveMethod, method, path)
	}

	pattern := normalizePath(joinPaths(r.basePath, path))
	segments := splitSegments(pattern)
	for _, seg := range segments {
		if isParamSegment(seg) && len(seg) == 1 {
			return fmt.Errorf("%w: %s %s", ErrEmptyParamName, method, path)
		}
	}

	// Schemas compile outside the lock; compilation reflects over struct
	// types and is the expensive part of registration.
	var requests *schema.RequestSchemas
	if cfg.hasSchemas {
		compiled, err := schema.CompileRequest(cfg.body, cfg.query)
		if err != nil {
			return fmt.Errorf("compile request schemas for %s %s: %w", method, pattern, err)
		}
		requests = compiled
	}
	responses, err := schema.CompileResponses(cfg.responses)
	if err != nil {
		return fmt.Errorf("compile response schemas for %s %s: %w", method, pattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	middleware := make([]HandlerFunc, 0, len(r.middleware)+len(cfg.middleware))
	middleware = append(middleware, r.middleware...)
	middleware = append(middleware, cfg.middleware...)

	return r.registerLocked(&Route{
		Method:     method,
		Path:       pattern,
		Middleware: middleware,
		Handler:    handler,
		Docs:       cfg.docs,
		Cache:      cfg.cache,
		wrapped:    wrapWithSchemas(handler, requests),
		requests:   requests,
		responses:  responses,
	})
}

// MustHandle is like Handle but panics on error.
func (r *Router) MustHandle(method, path string, handler HandlerFunc, opts ...RouteOption) {
	if err := r.Handle(method, path, handler, opts...); err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
}

// GET registers a GET route.
func (r *Router) GET(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodGet, path, handler, opts...)
}

// POST registers a POST route.
func (r *Router) POST(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodPost, path, handler, opts...)
}

// PUT registers a PUT route.
func (r *Router) PUT(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodPut, path, handler, opts...)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodDelete, path, handler, opts...)
}

// PATCH registers a PATCH route.
func (r *Router) PATCH(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodPatch, path, handler, opts...)
}

// HEAD registers a HEAD route.
func (r *Router) HEAD(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodHead, path, handler, opts...)
}

// OPTIONS registers an OPTIONS route.
func (r *Router) OPTIONS(path string, handler HandlerFunc, opts ...RouteOption) error {
	return r.Handle(http.MethodOptions, path, handler, opts...)
}

// registerLocked inserts or updates rt in the trie, registry and static
// cache. The caller holds the write lock. rt.Method must be upper-cased and
// rt.Path normalized.
func (r *Router) registerLocked(rt *Route) error {
	segments := splitSegments(rt.Path)
	terminal, err := r.trees.treeOrCreate(rt.Method).insert(segments)
	if err != nil {
		return fmt.Errorf("register %s %s: %w", rt.Method, rt.Path, err)
	}

	key := routeKey(rt.Method, rt.Path)
	existing, ok := r.byKey[key]
	if ok {
		// Update in place: position and ID survive re-registration.
		rt.ID = existing.ID
		*existing = *rt
		rt = existing
	} else {
		r.nextID++
		rt.ID = r.nextID
		r.registry = append(r.registry, rt)
		r.byKey[key] = rt
	}

	terminal.setRoute(rt)
	r.patternByID[rt.ID] = rt.Path
	if rt.responses != nil {
		r.responsesByID[rt.ID] = rt.responses
	} else {
		delete(r.responsesByID, rt.ID)
	}

	if isStaticPattern(segments) {
		r.cache.put(cacheKey(rt.Method, rt.Path), r.matchFor(rt, nil))
	} else {
		// A new dynamic pattern may shadow cached literal paths; drop every
		// entry it would now match.
		r.cache.evictShadowed(rt.Method, segments)
	}
	return nil
}

func (r *Router) matchFor(rt *Route, params map[string]string) *Match {
	return &Match{
		Middleware: rt.Middleware,
		Handler:    rt.wrapped,
		Params:     params,
		Responses:  rt.responses,
		Cache:      rt.Cache,
		Pattern:    rt.Path,
		RouteID:    rt.ID,
	}
}

func routeKey(method, pattern string) string {
	return method + ":" + pattern
}

// Find resolves method and rawPath to a match. The query string is ignored,
// duplicate and trailing slashes collapse, and literal segments win over
// parameters, which win over a trailing wildcard. The boolean reports whether
// a route matched; the router never writes a 404 itself on Find.
func (r *Router) Find(method, rawPath string) (Match, bool) {
	method = strings.ToUpper(method)
	path := stripQuery(rawPath)

	// Fast path: already-normalized literal paths hit the cache without any
	// splitting or locking beyond the cache's own.
	if m, ok := r.cache.get(cacheKey(method, path)); ok {
		return *m, true
	}

	segments := splitSegments(path)
	normalized := joinSegments(segments)
	if normalized != path {
		if m, ok := r.cache.get(cacheKey(method, normalized)); ok {
			return *m, true
		}
	}

	r.mu.RLock()
	tree := r.trees.tree(method)
	if tree == nil {
		r.mu.RUnlock()
		return Match{}, false
	}
	terminal, params := tree.walk(segments)
	if terminal == nil || !terminal.terminal() {
		r.mu.RUnlock()
		return Match{}, false
	}
	m := Match{
		Middleware: terminal.middleware,
		Handler:    terminal.handler,
		Params:     params,
		Responses:  r.responsesByID[terminal.routeID],
		Cache:      terminal.cache,
		Pattern:    r.patternByID[terminal.routeID],
		RouteID:    terminal.routeID,
	}
	r.mu.RUnlock()

	// A resolution that captured no parameters came off literal edges only,
	// so the path is cacheable under its normalized form.
	if params == nil {
		cached := m
		r.cache.put(cacheKey(method, normalized), &cached)
	}
	return m, true
}

// ApplyGlobalMiddleware prepends middleware to every registered route,
// preserving each route's existing chain order after the new entries. Routes
// registered afterwards are unaffected; combine with Use for those.
func (r *Router) ApplyGlobalMiddleware(middleware ...HandlerFunc) {
	if len(middleware) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.registry {
		combined := make([]HandlerFunc, 0, len(middleware)+len(rt.Middleware))
		combined = append(combined, middleware...)
		combined = append(combined, rt.Middleware...)
		rt.Middleware = combined

		// Refresh the trie terminal and any cached entry. Patterns already in
		// the trie cannot conflict with themselves, so this cannot fail.
		segments := splitSegments(rt.Path)
		terminal, err := r.trees.treeOrCreate(rt.Method).insert(segments)
		if err != nil {
			continue
		}
		terminal.setRoute(rt)
		if isStaticPattern(segments) {
			r.cache.put(cacheKey(rt.Method, rt.Path), r.matchFor(rt, nil))
		}
	}
}

// Routes returns a snapshot of the registry in registration order.
func (r *Router) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Route, len(r.registry))
	for i, rt := range r.registry {
		out[i] = *rt
	}
	return out
}

// Reset discards every route, the static cache and all auxiliary metadata.
// Global middleware registered via Use is kept.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trees.reset()
	r.cache.reset()
	r.registry = nil
	clear(r.byKey)
	clear(r.patternByID)
	clear(r.responsesByID)
}

// wrapWithSchemas returns handler wrapped with request validation. With nil
// schemas the handler is returned unchanged. On validation failure the wrapper
// writes a 400 and the handler never runs.
func wrapWithSchemas(handler HandlerFunc, requests *schema.RequestSchemas) HandlerFunc {
	if requests == nil {
		return handler
	}
	return func(c *Context) {
		body, query, err := requests.ValidateRequest(c.Request)
		if err != nil {
			c.Error(err)
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			c.Abort()
			return
		}
		if body != nil {
			c.Set(validatedBodyKey, body)
		}
		if query != nil {
			c.Set(validatedQueryKey, query)
		}
		handler(c)
	}
}
