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

import "errors"

var (
	// ErrNilHandler indicates that a route was registered without a handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrEmptyMethod indicates that a route was registered with an empty HTTP method.
	ErrEmptyMethod = errors.New("method must not be empty")

	// ErrCacheDirectiveMethod indicates that a cache directive was attached to a
	// non-GET route. Caching non-idempotent routes is a correctness hazard, so
	// this is a fatal configuration error rather than a silent fallback.
	ErrCacheDirectiveMethod = errors.New("cache directive requires GET")

	// ErrParamConflict indicates that two routes declare different parameter
	// names at the same trie depth under the same parent. Each depth permits a
	// single parameter child; conflicting registrations are rejected rather
	// than silently re-routing previously registered patterns.
	ErrParamConflict = errors.New("conflicting parameter name at same path depth")

	// ErrEmptyParamName indicates a parameter segment with no name (a bare ":").
	ErrEmptyParamName = errors.New("parameter segment must be named")

	// ErrInvalidBasePath indicates that the configured base path does not start
	// with a separator.
	ErrInvalidBasePath = errors.New("base path must start with '/'")

	// ErrServerTimeoutInvalid indicates a negative server timeout value.
	ErrServerTimeoutInvalid = errors.New("server timeout must not be negative")

	// ErrResponseWriterNotHijacker indicates that the underlying ResponseWriter
	// does not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")
)
