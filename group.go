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
	"errors"

	"balda.dev/router/schema"
)

// Group registers a set of routes under a shared path prefix and middleware
// chain. The register callback receives a scoped sub-router: every route it
// registers gets the prefix prepended to its pattern and the chain prefixed
// to its middleware, in the order parent chain, then group middleware, then
// route middleware.
//
// The sub-router is a full Router, so groups nest: calling Group on it
// compounds prefixes and chains. Routes become visible on the parent only
// when Group returns; a pattern conflict with existing parent routes surfaces
// in the returned error.
func (r *Router) Group(prefix string, middleware []HandlerFunc, register func(*Router)) error {
	r.mu.RLock()
	chain := make([]HandlerFunc, 0, len(r.middleware)+len(middleware))
	chain = append(chain, r.middleware...)
	chain = append(chain, middleware...)
	basePath := joinPaths(r.basePath, prefix)
	r.mu.RUnlock()

	sub := &Router{
		cache:         newStaticCache(),
		byKey:         make(map[string]*Route),
		patternByID:   make(map[uint64]string),
		responsesByID: make(map[uint64]*schema.ResponseSchemas),
		logger:        r.logger,
		recorder:      r.recorder,
		basePath:      basePath,
		middleware:    chain,
		timeouts:      r.timeouts,
	}
	register(sub)

	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, rt := range sub.registry {
		merged := *rt
		if err := r.registerLocked(&merged); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
