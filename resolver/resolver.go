/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package resolver

import (
	"fmt"
	"maps"
	"reflect"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/perform/apis"
)

// DefaultTranslations maps symbolic selectors to conventional method names.
var DefaultTranslations = map[string]string{
	"+": "plus",
}

// Option configures a resolver.
type Option func(*resolver)

// WithTranslations replaces the selector translation table.
func WithTranslations(table map[string]string) Option {
	return func(r *resolver) {
		r.translations = maps.Clone(table)
	}
}

// New constructs an apis.Resolver that scans the operations reported by inv.
// The returned resolver is safe for concurrent use provided inv is.
func New(cfg apis.Config, inv apis.Invoker, opts ...Option) apis.Resolver {
	r := &resolver{
		inv:          inv,
		translations: maps.Clone(DefaultTranslations),
	}
	for _, opt := range opts {
		opt(r)
	}
	if cfg.ResolveDelay > 0 {
		r.delay.Store(int64(cfg.ResolveDelay))
	}
	return r
}

// resolver performs the uncached linear scan.
type resolver struct {
	inv          apis.Invoker
	translations map[string]string
	delay        atomic.Int64 // time.Duration
}

// Ensure resolver implements apis.Resolver.
var _ apis.Resolver = (*resolver)(nil)

// Resolve translates selector and returns the first operation of t whose
// name matches it. Overloads are not disambiguated.
func (r *resolver) Resolve(t reflect.Type, selector string) (apis.Operation, error) {
	if d := r.Delay(); d > 0 {
		time.Sleep(d)
	}
	if t == nil {
		return apis.Operation{}, &apis.OperationNotFoundError{Selector: selector}
	}

	name := r.translate(selector)
	exported := exportedName(name)
	for _, op := range r.inv.Operations(t) {
		if op.Name == name || op.Name == exported {
			return op, nil
		}
	}
	return apis.Operation{}, &apis.OperationNotFoundError{Selector: selector}
}

// SetDelay sets the artificial scan delay.
func (r *resolver) SetDelay(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: negative resolve delay %s", apis.ErrInvalidArgument, d)
	}
	r.delay.Store(int64(d))
	return nil
}

// Delay returns the artificial scan delay.
func (r *resolver) Delay() time.Duration {
	return time.Duration(r.delay.Load())
}

func (r *resolver) translate(selector string) string {
	if n, ok := r.translations[selector]; ok {
		return n
	}
	return selector
}

// exportedName upper-cases the first rune of name, the form a Go method
// carrying that name is exported under.
func exportedName(name string) string {
	c, size := utf8.DecodeRuneInString(name)
	if c == utf8.RuneError || unicode.IsUpper(c) {
		return name
	}
	return string(unicode.ToUpper(c)) + name[size:]
}
