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
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHTTPStaticRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/hello", func(c *Context) {
		_ = c.String(http.StatusOK, "hello")
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestServeHTTPParams(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users/:id/files/*", func(c *Context) {
		_ = c.JSON(http.StatusOK, map[string]string{
			"id":   c.Param("id"),
			"rest": c.Param("*"),
		})
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42/files/a/b", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"42","rest":"a/b"}`, w.Body.String())
}

func TestServeHTTPNotFound(t *testing.T) {
	t.Parallel()

	r := MustNew()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeHTTPNoRouteHandler(t *testing.T) {
	t.Parallel()

	r := MustNew(WithNoRoute(func(c *Context) {
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": "no such route"})
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"no such route"}`, w.Body.String())
}

func TestServeHTTPCacheControl(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/cached", func(c *Context) {
		_ = c.String(http.StatusOK, "ok")
	}, WithCacheDirective(CacheDirective{
		TTL:                  5 * time.Minute,
		StaleWhileRevalidate: 30 * time.Second,
		Public:               true,
	})))
	require.NoError(t, r.GET("/plain", func(c *Context) {
		_ = c.String(http.StatusOK, "ok")
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cached", nil))
	assert.Equal(t, "public, max-age=300, stale-while-revalidate=30", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Empty(t, w.Header().Get("Cache-Control"))
}

func TestServeHTTPAbort(t *testing.T) {
	t.Parallel()

	handlerRan := false
	r := MustNew()
	require.NoError(t, r.GET("/denied", func(c *Context) {
		handlerRan = true
	}, WithMiddleware(func(c *Context) {
		c.Status(http.StatusForbidden)
		c.Abort()
	})))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/denied", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, handlerRan)
}

func TestServeHTTPRequestValidation(t *testing.T) {
	t.Parallel()

	type createUser struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	r := MustNew()
	require.NoError(t, r.POST("/users", func(c *Context) {
		body, ok := c.ValidatedBody().(*createUser)
		require.True(t, ok)
		_ = c.JSON(http.StatusCreated, map[string]string{"name": body.Name})
	}, WithRequestSchemas(createUser{}, nil)))

	req := httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"name":"ada","email":"ada@example.com"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"ada"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/users",
		strings.NewReader(`{"name":"ada","email":"not-an-email"}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type recordingObserver struct {
	started  bool
	pattern  string
	status   int
	exclude  bool
	enriched bool
}

func (o *recordingObserver) OnRequestStart(ctx context.Context, _ *http.Request) (context.Context, any) {
	o.started = true
	if o.enriched {
		ctx = context.WithValue(ctx, observerKey{}, "on")
	}
	if o.exclude {
		return ctx, nil
	}
	return ctx, o
}

func (o *recordingObserver) OnRequestEnd(_ context.Context, _ any, writer http.ResponseWriter, pattern string) {
	o.pattern = pattern
	if info, ok := writer.(ResponseInfo); ok {
		o.status = info.StatusCode()
	}
}

type observerKey struct{}

func TestServeHTTPObservability(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	r := MustNew(WithObservability(obs))
	require.NoError(t, r.GET("/users/:id", func(c *Context) {
		c.Status(http.StatusNoContent)
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1", nil))

	assert.True(t, obs.started)
	assert.Equal(t, "/users/:id", obs.pattern, "recorders see the pattern, not the raw path")
	assert.Equal(t, http.StatusNoContent, obs.status)
}

func TestServeHTTPObservabilityNotFound(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	r := MustNew(WithObservability(obs))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, notFoundPattern, obs.pattern)
}

func TestServeHTTPObservabilityExcluded(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{exclude: true, enriched: true}
	var seen any
	r := MustNew(WithObservability(obs))
	require.NoError(t, r.GET("/health", func(c *Context) {
		seen = c.Request.Context().Value(observerKey{})
		c.Status(http.StatusOK)
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, obs.started)
	assert.Empty(t, obs.pattern, "excluded requests skip OnRequestEnd")
	assert.Equal(t, "on", seen, "context enrichment applies even when excluded")
}

func TestResponseWriterCapturesStatusAndSize(t *testing.T) {
	t.Parallel()

	w := newResponseWriter(httptest.NewRecorder())
	w.WriteHeader(http.StatusTeapot)
	n, err := w.Write([]byte("short and stout"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, w.StatusCode())
	assert.Equal(t, int64(n), w.Size())
}

func TestResponseWriterDefaultsTo200(t *testing.T) {
	t.Parallel()

	w := newResponseWriter(httptest.NewRecorder())
	_, err := w.Write([]byte("implicit"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.StatusCode())
}

func TestShutdownWithoutServe(t *testing.T) {
	t.Parallel()

	r := MustNew()
	assert.NoError(t, r.Shutdown(context.Background()))
}
