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

// Package schema compiles request validation schemas and response
// serialization schemas for the router.
//
// Schemas are declared as struct prototypes: the request body schema uses
// go-playground/validator tags (`validate:"required"` etc.) on a struct whose
// fields carry `json` tags, and the query schema additionally uses `query`
// tags to bind URL query parameters. Compilation happens once at route
// registration; per-request work is limited to decode, bind and validate.
//
// The router treats compiled schemas as opaque: it stores them against the
// route and invokes ValidateRequest before delegating to the handler.
package schema

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrNotStruct indicates that a schema prototype is not a struct or a
	// pointer to one.
	ErrNotStruct = errors.New("schema prototype must be a struct")

	// ErrValidation indicates that a request failed schema validation. The
	// wrapped error carries the field-level detail from the validator.
	ErrValidation = errors.New("request validation failed")

	// ErrBodyDecode indicates that the request body could not be decoded as JSON.
	ErrBodyDecode = errors.New("request body decode failed")

	// ErrNoSchemaForStatus indicates that no response schema is registered for
	// the given status code.
	ErrNoSchemaForStatus = errors.New("no response schema for status")
)

// RequestSchemas holds the compiled validation schemas for a route's request
// body and query string. Zero, one or both may be present.
type RequestSchemas struct {
	body     reflect.Type
	query    reflect.Type
	validate *validator.Validate
}

// CompileRequest compiles body and query struct prototypes into a reusable
// validator. Either prototype may be nil. Non-struct prototypes are rejected.
func CompileRequest(body, query any) (*RequestSchemas, error) {
	s := &RequestSchemas{validate: validator.New(validator.WithRequiredStructEnabled())}

	var err error
	if s.body, err = structType(body); err != nil {
		return nil, fmt.Errorf("body schema: %w", err)
	}
	if s.query, err = structType(query); err != nil {
		return nil, fmt.Errorf("query schema: %w", err)
	}
	return s, nil
}

// structType resolves a prototype value to its struct type, unwrapping one
// level of pointer. A nil prototype yields a nil type.
func structType(prototype any) (reflect.Type, error) {
	if prototype == nil {
		return nil, nil
	}
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %s", ErrNotStruct, t.Kind())
	}
	return t, nil
}

// HasBody reports whether a body schema was compiled.
func (s *RequestSchemas) HasBody() bool { return s.body != nil }

// HasQuery reports whether a query schema was compiled.
func (s *RequestSchemas) HasQuery() bool { return s.query != nil }

// ValidateRequest decodes and validates the request against the compiled
// schemas. On success it returns the populated body and query values (each a
// pointer to a fresh struct, or nil when the corresponding schema is absent).
// Failures wrap ErrBodyDecode or ErrValidation.
//
// ValidateRequest consumes the request body when a body schema is present.
func (s *RequestSchemas) ValidateRequest(r *http.Request) (body, query any, err error) {
	if s.body != nil {
		v := reflect.New(s.body).Interface()
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrBodyDecode, err)
		}
		if err := s.validate.Struct(v); err != nil {
			return nil, nil, fmt.Errorf("%w: body: %w", ErrValidation, err)
		}
		body = v
	}

	if s.query != nil {
		v := reflect.New(s.query).Interface()
		if err := bindQuery(r.URL.Query(), v); err != nil {
			return nil, nil, fmt.Errorf("%w: query: %w", ErrValidation, err)
		}
		if err := s.validate.Struct(v); err != nil {
			return nil, nil, fmt.Errorf("%w: query: %w", ErrValidation, err)
		}
		query = v
	}

	return body, query, nil
}

// ResponseSchemas holds the compiled per-status response schemas of a route.
// The router attaches these to match results so that the serialization layer
// and documentation generators can consume them.
type ResponseSchemas struct {
	byStatus map[int]reflect.Type
}

// CompileResponses compiles a mapping of HTTP status code to response struct
// prototype. Non-struct prototypes are rejected.
func CompileResponses(byStatus map[int]any) (*ResponseSchemas, error) {
	if len(byStatus) == 0 {
		return nil, nil
	}
	s := &ResponseSchemas{byStatus: make(map[int]reflect.Type, len(byStatus))}
	for status, prototype := range byStatus {
		t, err := structType(prototype)
		if err != nil {
			return nil, fmt.Errorf("response schema for %d: %w", status, err)
		}
		s.byStatus[status] = t
	}
	return s, nil
}

// Schema returns the response type registered for a status code.
func (s *ResponseSchemas) Schema(status int) (reflect.Type, bool) {
	t, ok := s.byStatus[status]
	return t, ok
}

// Statuses returns the registered status codes in ascending order.
func (s *ResponseSchemas) Statuses() []int {
	statuses := make([]int, 0, len(s.byStatus))
	for status := range s.byStatus {
		statuses = append(statuses, status)
	}
	slices.Sort(statuses)
	return statuses
}

// Marshal serializes a response value for the given status. The value is
// checked against the registered schema type when one exists; an unregistered
// status fails with ErrNoSchemaForStatus.
func (s *ResponseSchemas) Marshal(status int, v any) ([]byte, error) {
	want, ok := s.byStatus[status]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSchemaForStatus, status)
	}
	if v != nil && want != nil {
		got := reflect.TypeOf(v)
		if got.Kind() == reflect.Pointer {
			got = got.Elem()
		}
		if got != want {
			return nil, fmt.Errorf("response for %d: want %s, got %s", status, want, got)
		}
	}
	return json.Marshal(v)
}
