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

package schema

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// bindQuery populates a struct pointer from URL query values using `query`
// field tags. Fields without a tag fall back to their `json` tag name.
// Supported field kinds: string, bool, signed/unsigned integers, floats, and
// slices of string. Missing parameters leave the field at its zero value;
// validation decides whether that is acceptable.
func bindQuery(values url.Values, target any) error {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("query")
		if name == "" {
			name = field.Tag.Get("json")
		}
		if name == "" || name == "-" {
			continue
		}

		if !values.Has(name) {
			continue
		}
		raw := values.Get(name)

		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			fv.SetBool(b)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			fv.SetInt(n)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			fv.SetUint(n)
		case reflect.Float32, reflect.Float64:
			f, err := strconv.ParseFloat(raw, fv.Type().Bits())
			if err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
			fv.SetFloat(f)
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.String {
				fv.Set(reflect.ValueOf(values[name]))
			}
		default:
			// Unsupported kinds are skipped rather than failing the request;
			// the validator reports them if they were required.
		}
	}
	return nil
}
