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
	"fmt"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HandlerFunc is the signature shared by route handlers and middleware.
// Middleware calls c.Next() to continue the chain and may short-circuit by
// writing a response and calling c.Abort().
type HandlerFunc func(*Context)

// Context carries a single request through the resolved middleware chain and
// handler. Contexts are pooled; handlers must not retain a Context (or values
// derived from it, such as the Params map) past the handler's return.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	handlers []HandlerFunc
	index    int32

	params  map[string]string
	pattern string
	status  int
	aborted bool
	errors  []error
	values  map[string]any
	logger  *slog.Logger
}

// reset clears the context for reuse from the pool.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.handlers = nil
	c.index = -1
	c.params = nil
	c.pattern = ""
	c.status = 0
	c.aborted = false
	c.errors = nil
	c.values = nil
	c.logger = nil
}

// Next executes the remaining handlers in the chain. Middleware calls Next to
// run downstream handlers and regains control afterwards.
func (c *Context) Next() {
	c.index++
	for c.index < int32(len(c.handlers)) {
		if c.aborted {
			return
		}
		c.handlers[c.index](c)
		c.index++
	}
}

// Abort stops the chain: no remaining handlers run after the current one
// returns.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted reports whether Abort was called.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Param returns the value captured for a named path parameter, or "" if the
// route declares no such parameter. The wildcard remainder is available under
// the name "*".
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Params returns the captured path parameters. The returned map is owned by
// the context; callers must copy it to retain it past the request.
func (c *Context) Params() map[string]string {
	return c.params
}

// Query returns the first value of a URL query parameter.
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// Pattern returns the matched route pattern as declared, e.g. "/users/:id".
// It is empty for unmatched requests.
func (c *Context) Pattern() string {
	return c.pattern
}

// Header sets a response header.
func (c *Context) Header(key, value string) {
	c.Response.Header().Set(key, value)
}

// Status writes the response status code.
func (c *Context) Status(code int) {
	c.status = code
	c.Response.WriteHeader(code)
}

// StatusCode returns the status code written via Status, JSON or String,
// or zero if none has been written through the context yet.
func (c *Context) StatusCode() int {
	return c.status
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(code int, v any) error {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.status = code
	c.Response.WriteHeader(code)
	return json.NewEncoder(c.Response).Encode(v)
}

// String writes a formatted plain-text response with the given status code.
func (c *Context) String(code int, format string, args ...any) error {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.status = code
	c.Response.WriteHeader(code)
	_, err := fmt.Fprintf(c.Response, format, args...)
	return err
}

// Error records an error against the request; middleware such as AccessLog
// can surface collected errors after the chain completes.
func (c *Context) Error(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Errors returns the errors collected during the request.
func (c *Context) Errors() []error {
	return c.errors
}

// Set stores a request-scoped value.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any, 4)
	}
	c.values[key] = value
}

// Get retrieves a request-scoped value.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Context-scoped keys for values populated by the validation wrapper.
const (
	validatedBodyKey  = "balda.validated_body"
	validatedQueryKey = "balda.validated_query"
)

// ValidatedBody returns the decoded, validated request body populated by the
// route's request schemas, or nil when the route declares no body schema.
func (c *Context) ValidatedBody() any {
	return c.values[validatedBodyKey]
}

// ValidatedQuery returns the bound, validated query struct populated by the
// route's request schemas, or nil when the route declares no query schema.
func (c *Context) ValidatedQuery() any {
	return c.values[validatedQueryKey]
}

// Logger returns the request-scoped logger. Without an observability
// recorder this is a no-op logger, so handlers can log unconditionally.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}
	return c.logger
}

// span returns the active OpenTelemetry span from the request context.
func (c *Context) span() trace.Span {
	return trace.SpanFromContext(c.Request.Context())
}

// TraceID returns the current trace ID, or "" when tracing is inactive.
func (c *Context) TraceID() string {
	if sc := c.span().SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the current span ID, or "" when tracing is inactive.
func (c *Context) SpanID() string {
	if sc := c.span().SpanContext(); sc.HasSpanID() {
		return sc.SpanID().String()
	}
	return ""
}

// SetSpanAttribute adds an attribute to the active span. No-op when tracing
// is inactive.
func (c *Context) SetSpanAttribute(key string, value any) {
	span := c.span()
	if !span.IsRecording() {
		return
	}
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	default:
		span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

// AddSpanEvent adds an event with optional attributes to the active span.
func (c *Context) AddSpanEvent(name string, attrs ...attribute.KeyValue) {
	span := c.span()
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// TraceContext returns the request context, which carries the active trace
// when tracing is enabled. Useful for propagating to downstream calls.
func (c *Context) TraceContext() context.Context {
	return c.Request.Context()
}
