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

import "net/http"

// methodTrees holds one trie root per HTTP method. Path structure is
// independent per method, so each method gets its own tree. A switch on the
// method string avoids map hashing on the request path.
type methodTrees struct {
	get     *node
	post    *node
	put     *node
	delete  *node
	patch   *node
	head    *node
	options *node
	other   map[string]*node // non-standard methods, rarely used
}

// tree returns the root for the given method, or nil if no route has been
// registered for it.
func (m *methodTrees) tree(method string) *node {
	switch method {
	case http.MethodGet:
		return m.get
	case http.MethodPost:
		return m.post
	case http.MethodPut:
		return m.put
	case http.MethodDelete:
		return m.delete
	case http.MethodPatch:
		return m.patch
	case http.MethodHead:
		return m.head
	case http.MethodOptions:
		return m.options
	default:
		return m.other[method]
	}
}

// treeOrCreate returns the root for the given method, creating it on first
// registration.
func (m *methodTrees) treeOrCreate(method string) *node {
	if t := m.tree(method); t != nil {
		return t
	}
	t := &node{}
	switch method {
	case http.MethodGet:
		m.get = t
	case http.MethodPost:
		m.post = t
	case http.MethodPut:
		m.put = t
	case http.MethodDelete:
		m.delete = t
	case http.MethodPatch:
		m.patch = t
	case http.MethodHead:
		m.head = t
	case http.MethodOptions:
		m.options = t
	default:
		if m.other == nil {
			m.other = make(map[string]*node, 2)
		}
		m.other[method] = t
	}
	return t
}

// reset drops every per-method tree.
func (m *methodTrees) reset() {
	*m = methodTrees{}
}
