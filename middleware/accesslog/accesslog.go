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

// Package accesslog emits one structured log line per handled request.
package accesslog

import (
	"log/slog"
	"time"

	"balda.dev/router"
)

// Option configures the accesslog middleware.
type Option func(*config)

type config struct {
	logger *slog.Logger
	level  slog.Level
}

func defaultConfig() *config {
	return &config{
		logger: slog.Default(),
		level:  slog.LevelInfo,
	}
}

// WithLogger sets the destination logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithLevel sets the level access lines are emitted at.
func WithLevel(level slog.Level) Option {
	return func(cfg *config) {
		cfg.level = level
	}
}

// New returns middleware that logs method, path, matched pattern, status and
// duration after the downstream chain finishes. The matched pattern rather
// than the raw path keeps log cardinality bounded for parameterized routes.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		start := time.Now()
		c.Next()

		cfg.logger.LogAttrs(c.Request.Context(), cfg.level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("pattern", c.Pattern()),
			slog.Int("status", c.StatusCode()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
