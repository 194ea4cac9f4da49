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
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// serverTimeouts carries the http.Server timeouts applied by Serve and
// ServeTLS. Defaults are conservative enough for production; override with
// WithReadTimeout and friends.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultServerTimeouts() serverTimeouts {
	return serverTimeouts{
		readHeader: 5 * time.Second,
		read:       10 * time.Second,
		write:      30 * time.Second,
		idle:       120 * time.Second,
	}
}

// ServeHTTP implements http.Handler. Each request is resolved through Find,
// then executed on a pooled Context running the matched middleware chain and
// handler. GET matches carrying a cache directive get their Cache-Control
// header set before the chain runs. Unmatched requests go to the NoRoute
// handler, defaulting to a plain 404.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var obsState any
	if r.recorder != nil {
		var enriched context.Context
		enriched, obsState = r.recorder.OnRequestStart(ctx, req)
		if enriched != ctx {
			ctx = enriched
			req = req.WithContext(ctx)
		}
		if obsState != nil {
			w = newResponseWriter(w)
		}
	}

	m, ok := r.Find(req.Method, req.URL.Path)
	if !ok {
		r.handleNotFound(w, req)
		if obsState != nil {
			r.recorder.OnRequestEnd(ctx, obsState, w, notFoundPattern)
		}
		return
	}

	if m.Cache != nil && req.Method == http.MethodGet {
		w.Header().Set("Cache-Control", m.Cache.CacheControl())
	}

	c := acquireContext()
	c.Request = req
	c.Response = w
	c.params = m.Params
	c.pattern = m.Pattern
	c.logger = r.logger
	c.handlers = append(c.handlers, m.Middleware...)
	c.handlers = append(c.handlers, m.Handler)
	c.Next()
	releaseContext(c)

	if obsState != nil {
		r.recorder.OnRequestEnd(ctx, obsState, w, m.Pattern)
	}
}

// handleNotFound runs the configured NoRoute handler, or writes a plain 404.
func (r *Router) handleNotFound(w http.ResponseWriter, req *http.Request) {
	if r.noRoute == nil {
		http.NotFound(w, req)
		return
	}
	c := acquireContext()
	c.Request = req
	c.Response = w
	c.logger = r.logger
	c.handlers = append(c.handlers, r.noRoute)
	c.Next()
	releaseContext(c)
}

// Serve starts an HTTP server on addr and blocks until it exits. With
// WithH2C the handler is wrapped for cleartext HTTP/2; use that only in
// development or behind a trusted load balancer. Use Shutdown from another
// goroutine for graceful shutdown.
func (r *Router) Serve(addr string) error {
	h := http.Handler(r)
	if r.h2c {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: r.timeouts.readHeader,
		ReadTimeout:       r.timeouts.read,
		WriteTimeout:      r.timeouts.write,
		IdleTimeout:       r.timeouts.idle,
	}

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server on addr and blocks until it exits. HTTP/2
// is negotiated automatically via ALPN.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: r.timeouts.readHeader,
		ReadTimeout:       r.timeouts.read,
		WriteTimeout:      r.timeouts.write,
		IdleTimeout:       r.timeouts.idle,
	}

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	return srv.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully stops the server started by Serve or ServeTLS. It
// returns nil when no server is running.
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMu.Lock()
	srv := r.server
	r.server = nil
	r.serverMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
