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

// Package requestid propagates a unique ID per request for log correlation.
package requestid

import (
	"github.com/google/uuid"

	"balda.dev/router"
)

// ContextKey is the key under which the request ID is stored on the Context.
const ContextKey = "request_id"

// Option configures the requestid middleware.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     uuid.NewString,
		allowClientID: true,
	}
}

// WithHeaderName overrides the header carrying the request ID.
func WithHeaderName(name string) Option {
	return func(cfg *config) {
		cfg.headerName = name
	}
}

// WithGenerator overrides the ID generator. The default is a random UUIDv4.
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		cfg.generator = generator
	}
}

// WithAllowClientID controls whether an ID supplied by the client in the
// request header is trusted. Enabled by default.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// New returns middleware that assigns each request an ID, echoes it in the
// response header and stores it on the context under ContextKey.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		id := ""
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}
		c.Header(cfg.headerName, id)
		c.Set(ContextKey, id)
		c.Next()
	}
}

// FromContext returns the request ID stored by the middleware, or "".
func FromContext(c *router.Context) string {
	if id, ok := c.Get(ContextKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
