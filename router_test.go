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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(_ *Context) {}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(WithBasePath("api"))
	require.ErrorIs(t, err, ErrInvalidBasePath)

	_, err = New(WithReadTimeout(-time.Second))
	require.ErrorIs(t, err, ErrServerTimeoutInvalid)

	r, err := New(WithBasePath("/api"))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestMustNewPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustNew(WithBasePath("no-slash"))
	})
}

func TestHandleValidation(t *testing.T) {
	t.Parallel()

	r := MustNew()

	err := r.Handle(http.MethodGet, "/users", nil)
	require.ErrorIs(t, err, ErrNilHandler)

	err = r.Handle("", "/users", noop)
	require.ErrorIs(t, err, ErrEmptyMethod)

	err = r.Handle(http.MethodGet, "/users/:", noop)
	require.ErrorIs(t, err, ErrEmptyParamName)
}

func TestFindStaticRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/api/users", noop))

	// Registration populates the cache eagerly.
	_, ok := r.cache.get(cacheKey(http.MethodGet, "/api/users"))
	assert.True(t, ok)

	m, ok := r.Find(http.MethodGet, "/api/users")
	require.True(t, ok)
	assert.Equal(t, "/api/users", m.Pattern)
	assert.Nil(t, m.Params)
	assert.NotNil(t, m.Handler)
}

func TestFindParamRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users/:id", noop))

	m, ok := r.Find(http.MethodGet, "/users/42")
	require.True(t, ok)
	assert.Equal(t, "/users/:id", m.Pattern)
	assert.Equal(t, map[string]string{"id": "42"}, m.Params)

	// Dynamic resolutions never enter the static cache.
	assert.Equal(t, 0, r.cache.len())
}

func TestFindWildcardRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/files/*", noop))

	m, ok := r.Find(http.MethodGet, "/files/a/b/c")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"*": "a/b/c"}, m.Params)
}

func TestFindNormalizationEquivalence(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/api/users", noop))

	for _, path := range []string{"/api/users", "//api//users/", "/api/users/", "/api/users?page=2"} {
		m, ok := r.Find(http.MethodGet, path)
		require.True(t, ok, "path %q must resolve", path)
		assert.Equal(t, "/api/users", m.Pattern)
	}
}

func TestFindMethodScoped(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users", noop))

	_, ok := r.Find(http.MethodPost, "/users")
	assert.False(t, ok)

	// Lower-case methods resolve; matching is case-insensitive on the method.
	_, ok = r.Find("get", "/users")
	assert.True(t, ok)
}

func TestFindNotFound(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users", noop))

	_, ok := r.Find(http.MethodGet, "/missing")
	assert.False(t, ok)

	_, ok = r.Find(http.MethodGet, "/users/42")
	assert.False(t, ok, "prefix nodes are not matches")
}

func TestHandleIdempotent(t *testing.T) {
	t.Parallel()

	r := MustNew()
	first := false
	second := false
	require.NoError(t, r.GET("/users", func(_ *Context) { first = true }))
	require.NoError(t, r.GET("/other", noop))
	require.NoError(t, r.GET("/users", func(_ *Context) { second = true }))

	routes := r.Routes()
	require.Len(t, routes, 2, "re-registration must not grow the registry")
	assert.Equal(t, "/users", routes[0].Path, "registry order is registration order")
	assert.Equal(t, uint64(1), routes[0].ID, "ID survives re-registration")

	m, ok := r.Find(http.MethodGet, "/users")
	require.True(t, ok)
	m.Handler(&Context{})
	assert.False(t, first, "old handler must be replaced")
	assert.True(t, second)
}

func TestStaticToDynamicTransition(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users/42", noop))

	_, ok := r.cache.get(cacheKey(http.MethodGet, "/users/42"))
	require.True(t, ok)

	// The new dynamic route shadows the cached literal; the literal route
	// itself still wins lookups through the trie.
	require.NoError(t, r.GET("/users/:id", noop))

	m, ok := r.Find(http.MethodGet, "/users/42")
	require.True(t, ok)
	assert.Equal(t, "/users/42", m.Pattern, "literal beats param")

	m, ok = r.Find(http.MethodGet, "/users/7")
	require.True(t, ok)
	assert.Equal(t, "/users/:id", m.Pattern)
	assert.Equal(t, map[string]string{"id": "7"}, m.Params)
}

func TestFindRepopulatesEvictedLiteral(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users/me", noop))
	require.NoError(t, r.GET("/users/:id", noop))

	// Registering the param route evicted the cached literal.
	_, ok := r.cache.get(cacheKey(http.MethodGet, "/users/me"))
	require.False(t, ok)

	// A lookup that resolves the literal through the trie captures no
	// parameters, so it re-enters the cache.
	m, ok := r.Find(http.MethodGet, "/users/me")
	require.True(t, ok)
	assert.Equal(t, "/users/me", m.Pattern)

	_, ok = r.cache.get(cacheKey(http.MethodGet, "/users/me"))
	assert.True(t, ok)
}

func TestHandleParamConflict(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users/:id", noop))

	err := r.GET("/users/:name", noop)
	require.ErrorIs(t, err, ErrParamConflict)
}

func TestCacheDirectiveGETOnly(t *testing.T) {
	t.Parallel()

	r := MustNew()
	directive := CacheDirective{TTL: time.Minute, Public: true}

	err := r.POST("/users", noop, WithCacheDirective(directive))
	require.ErrorIs(t, err, ErrCacheDirectiveMethod)

	require.NoError(t, r.GET("/users", noop, WithCacheDirective(directive)))
	m, ok := r.Find(http.MethodGet, "/users")
	require.True(t, ok)
	require.NotNil(t, m.Cache)
	assert.Equal(t, time.Minute, m.Cache.TTL)
}

func TestBasePath(t *testing.T) {
	t.Parallel()

	r := MustNew(WithBasePath("/api"))
	require.NoError(t, r.GET("/users", noop))

	m, ok := r.Find(http.MethodGet, "/api/users")
	require.True(t, ok)
	assert.Equal(t, "/api/users", m.Pattern)

	_, ok = r.Find(http.MethodGet, "/users")
	assert.False(t, ok)
}

func TestUseAppliesToLaterRoutes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/before", noop))
	r.Use(noop)
	require.NoError(t, r.GET("/after", noop))

	before, ok := r.Find(http.MethodGet, "/before")
	require.True(t, ok)
	assert.Empty(t, before.Middleware)

	after, ok := r.Find(http.MethodGet, "/after")
	require.True(t, ok)
	assert.Len(t, after.Middleware, 1)
}

func TestApplyGlobalMiddleware(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) HandlerFunc {
		return func(c *Context) {
			order = append(order, name)
			c.Next()
		}
	}

	r := MustNew()
	require.NoError(t, r.GET("/users", func(_ *Context) {
		order = append(order, "handler")
	}, WithMiddleware(mark("route"))))

	r.ApplyGlobalMiddleware(mark("global"))

	m, ok := r.Find(http.MethodGet, "/users")
	require.True(t, ok)
	require.Len(t, m.Middleware, 2)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, []string{"global", "route", "handler"}, order)
}

func TestApplyGlobalMiddlewareRefreshesCache(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/health", noop))
	r.ApplyGlobalMiddleware(noop)

	m, ok := r.cache.get(cacheKey(http.MethodGet, "/health"))
	require.True(t, ok)
	assert.Len(t, m.Middleware, 1, "cached entry must see the retrofit")
}

func TestRoutesSnapshot(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/a", noop))
	require.NoError(t, r.POST("/b", noop))

	routes := r.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, http.MethodGet, routes[0].Method)
	assert.Equal(t, http.MethodPost, routes[1].Method)

	// Mutating the snapshot must not affect the router.
	routes[0].Path = "/mutated"
	fresh := r.Routes()
	assert.Equal(t, "/a", fresh[0].Path)
}

func TestReset(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users", noop))
	require.NoError(t, r.GET("/users/:id", noop))

	r.Reset()

	_, ok := r.Find(http.MethodGet, "/users")
	assert.False(t, ok)
	assert.Empty(t, r.Routes())
	assert.Equal(t, 0, r.cache.len())

	// The router remains usable after a reset.
	require.NoError(t, r.GET("/users", noop))
	_, ok = r.Find(http.MethodGet, "/users")
	assert.True(t, ok)
}

func TestMethodHelpers(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/r", noop))
	require.NoError(t, r.POST("/r", noop))
	require.NoError(t, r.PUT("/r", noop))
	require.NoError(t, r.DELETE("/r", noop))
	require.NoError(t, r.PATCH("/r", noop))
	require.NoError(t, r.HEAD("/r", noop))
	require.NoError(t, r.OPTIONS("/r", noop))

	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		http.MethodPatch, http.MethodHead, http.MethodOptions,
	} {
		_, ok := r.Find(method, "/r")
		assert.True(t, ok, method)
	}
}

func TestNonStandardMethod(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Handle("PURGE", "/cache", noop))

	_, ok := r.Find("PURGE", "/cache")
	assert.True(t, ok)
}
