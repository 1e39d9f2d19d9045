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

package apis

import (
	"fmt"
	"strings"
)

// Entry is the value stored per (TypeKey, selector) in a Cache.
// It is one of Resolved, Deferred, NotFound or Opaque.
type Entry interface {
	isEntry()
}

// Resolved holds a concrete, invocable operation. It lives in memory only.
type Resolved struct {
	Op Operation
}

// Deferred holds a locator that has not been bound to a concrete type yet.
// It must be materialized before invocation.
type Deferred struct {
	Locator Locator
}

// NotFound memoizes a negative scan result.
type NotFound struct{}

// Opaque is a persisted payload this package does not interpret.
// It is kept and re-saved verbatim.
type Opaque struct {
	Kind string
	Data []byte
}

func (Resolved) isEntry() {}
func (Deferred) isEntry() {}
func (NotFound) isEntry() {}
func (Opaque) isEntry()   {}

func (e Resolved) String() string {
	return fmt.Sprintf("Resolved(%s)", e.Op.Name)
}

func (e Deferred) String() string {
	return fmt.Sprintf("Deferred(%s)", e.Locator)
}

func (NotFound) String() string {
	return "NotFound"
}

func (e Opaque) String() string {
	return fmt.Sprintf("Opaque(%s, %d bytes)", e.Kind, len(e.Data))
}

// Locator is an inert, persistable descriptor of an operation: the method
// name plus the descriptors of its formal parameter types.
type Locator struct {
	name   string
	params []string
}

// NewLocator constructs a Locator. The parameter slice is copied.
func NewLocator(name string, params ...string) Locator {
	var ps []string
	if len(params) > 0 {
		ps = make([]string, len(params))
		copy(ps, params)
	}
	return Locator{name: name, params: ps}
}

// Name returns the method name.
func (l Locator) Name() string { return l.name }

// Params returns a copy of the parameter type descriptors.
func (l Locator) Params() []string {
	out := make([]string, len(l.params))
	copy(out, l.params)
	return out
}

// NumParams returns the number of parameters.
func (l Locator) NumParams() int { return len(l.params) }

// Param returns the i-th parameter type descriptor.
func (l Locator) Param(i int) string { return l.params[i] }

// String renders the locator as name(p1,p2).
func (l Locator) String() string {
	return l.name + "(" + strings.Join(l.params, ",") + ")"
}
