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
	"strings"
	"sync"
)

// staticCache is the O(1) fast path for routes with no parameter or wildcard
// segments. Entries are keyed by "METHOD:/literal/path" and hold a fully
// pre-resolved match, so a hit bypasses trie traversal entirely.
//
// An entry exists iff the corresponding route is static. Registration
// populates entries eagerly; lookups that resolve a parameterless path
// through the trie populate them additively; registering a dynamic route
// evicts every entry it shadows.
type staticCache struct {
	mu      sync.RWMutex
	entries map[string]*Match
}

func newStaticCache() *staticCache {
	return &staticCache{entries: make(map[string]*Match, 16)}
}

// cacheKey builds the lookup key for a method and a normalized literal path.
func cacheKey(method, path string) string {
	return method + ":" + path
}

// get returns the pre-resolved match for the key, if cached.
func (c *staticCache) get(key string) (*Match, bool) {
	c.mu.RLock()
	m, ok := c.entries[key]
	c.mu.RUnlock()
	return m, ok
}

// put stores or overwrites the pre-resolved match for the key.
func (c *staticCache) put(key string, m *Match) {
	c.mu.Lock()
	c.entries[key] = m
	c.mu.Unlock()
}

// evictShadowed removes every cached entry for the method whose literal path
// the given dynamic pattern would match. Without this, a route updated from
// static to dynamic would keep serving its stale pre-resolved match.
func (c *staticCache) evictShadowed(method string, pattern []string) {
	prefix := method + ":"
	c.mu.Lock()
	for key := range c.entries {
		literal, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if patternShadows(pattern, splitSegments(literal)) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// len reports the number of cached entries.
func (c *staticCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// reset drops all entries.
func (c *staticCache) reset() {
	c.mu.Lock()
	c.entries = make(map[string]*Match, 16)
	c.mu.Unlock()
}
