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
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// noopLogger discards everything. It is the default logger so that handlers
// can always call Context.Logger without a nil check.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns a logger that discards all records.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// notFoundPattern is reported to recorders when no route matched, so that
// unmatched paths collapse into one label instead of exploding cardinality.
const notFoundPattern = "_not_found"

// ObservabilityRecorder receives request lifecycle hooks from ServeHTTP.
// Implementations typically record metrics, spans, or access log lines.
//
// OnRequestStart runs before routing. It returns an enriched context, always
// applied to the request, and an opaque state token. A nil state excludes the
// request: the writer is not wrapped and OnRequestEnd is not called, but the
// enriched context still applies so trace propagation survives exclusion.
//
// OnRequestEnd receives the matched route pattern rather than the raw path;
// unmatched requests report notFoundPattern. The writer implements
// ResponseInfo when it was wrapped by the router.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, pattern string)
}

// ResponseInfo exposes response metadata captured by the router's writer
// wrapper. Recorders type-assert the writer they receive in OnRequestEnd.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}

// responseWriter wraps http.ResponseWriter to record the status code and
// bytes written. It passes Flush and Hijack through to the underlying writer
// when supported.
type responseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	w.written = true
	n, err := w.ResponseWriter.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *responseWriter) StatusCode() int { return w.status }

func (w *responseWriter) Size() int64 { return w.size }

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, ErrResponseWriterNotHijacker
	}
	return h.Hijack()
}

// LogRecorder is an ObservabilityRecorder that emits one structured access
// log line per request.
type LogRecorder struct {
	Logger *slog.Logger
}

type logRecorderState struct {
	start  time.Time
	method string
	path   string
}

// OnRequestStart captures the request start time. It never excludes requests
// and leaves the context untouched.
func (r *LogRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	return ctx, &logRecorderState{start: time.Now(), method: req.Method, path: req.URL.Path}
}

// OnRequestEnd writes the access log line for the finished request.
func (r *LogRecorder) OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, pattern string) {
	s, ok := state.(*logRecorderState)
	if !ok {
		return
	}
	attrs := []slog.Attr{
		slog.String("method", s.method),
		slog.String("path", s.path),
		slog.String("pattern", pattern),
		slog.Duration("duration", time.Since(s.start)),
	}
	if info, ok := writer.(ResponseInfo); ok {
		attrs = append(attrs,
			slog.Int("status", info.StatusCode()),
			slog.Int64("bytes", info.Size()),
		)
	}
	r.Logger.LogAttrs(ctx, slog.LevelInfo, "request", attrs...)
}
