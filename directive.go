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
	"strconv"
	"strings"
	"time"
)

// CacheDirective declares response cacheability for a route. The router
// stores it as route metadata and hands it back on every match; the serving
// adapter renders it as a Cache-Control header on GET responses.
//
// Cache directives are only legal on GET routes. Attaching one to any other
// method fails registration with ErrCacheDirectiveMethod.
type CacheDirective struct {
	// TTL is the freshness lifetime, rendered as max-age in whole seconds.
	TTL time.Duration

	// StaleWhileRevalidate permits serving stale content while revalidating
	// in the background (RFC 5861). Zero omits the directive.
	StaleWhileRevalidate time.Duration

	// Public marks the response cacheable by shared caches. Private wins if
	// both are set.
	Public bool

	// Private restricts caching to the requesting client.
	Private bool
}

// CacheControl renders the directive as a Cache-Control header value.
func (d CacheDirective) CacheControl() string {
	parts := make([]string, 0, 4)
	if d.Private {
		parts = append(parts, "private")
	} else if d.Public {
		parts = append(parts, "public")
	}
	if d.TTL > 0 {
		parts = append(parts, "max-age="+strconv.FormatInt(int64(d.TTL/time.Second), 10))
	}
	if d.StaleWhileRevalidate > 0 {
		parts = append(parts, "stale-while-revalidate="+strconv.FormatInt(int64(d.StaleWhileRevalidate/time.Second), 10))
	}
	return strings.Join(parts, ", ")
}
