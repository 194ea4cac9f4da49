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

// Package recovery converts handler panics into 500 responses.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"balda.dev/router"
)

// Option configures the recovery middleware.
type Option func(*config)

type config struct {
	stackTrace bool
	handler    func(c *router.Context, err any)
}

func defaultConfig() *config {
	return &config{
		stackTrace: true,
		handler:    defaultHandler,
	}
}

func defaultHandler(c *router.Context, _ any) {
	_ = c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

// WithStackTrace controls whether the panic log line includes a stack trace.
// Enabled by default.
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithHandler overrides the response written after a recovered panic. The
// default writes a JSON 500.
func WithHandler(handler func(c *router.Context, err any)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}

// New returns middleware that recovers panics from downstream handlers, logs
// them through the context's logger and writes a 500 response. Register it
// first in the chain so it covers everything after it.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		defer func() {
			if err := recover(); err != nil {
				attrs := []any{"panic", fmt.Sprint(err)}
				if cfg.stackTrace {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				c.Logger().Error("panic recovered", attrs...)
				c.Error(fmt.Errorf("panic: %v", err))
				cfg.handler(c, err)
				c.Abort()
			}
		}()
		c.Next()
	}
}
