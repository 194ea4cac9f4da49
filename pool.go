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

import "sync"

// contextPool reuses Context values across requests.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{index: -1}
	},
}

// acquireContext retrieves a Context from the pool.
func acquireContext() *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		// Only possible if foreign code put a wrong type into the pool.
		panic("router: context pool returned non-Context type")
	}
	return c
}

// releaseContext resets a Context and returns it to the pool.
//
// Usage:
//
//	c := acquireContext()
//	defer releaseContext(c)
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}
