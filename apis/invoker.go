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

import "reflect"

// Operation is an invocable reference to a concrete method of a concrete type.
// It is a live handle and is never persisted; see Locator.
type Operation struct {
	// Owner is the type the operation was resolved against.
	Owner reflect.Type
	// Name is the method name as reported by the runtime.
	Name string
	// Params are the formal parameter types, receiver excluded.
	Params []reflect.Type
	// Index is the method index within Owner's method set.
	Index int
}

// IsZero reports whether op is the zero Operation.
func (op Operation) IsZero() bool {
	return op.Owner == nil
}

// Invoker is the reflective invoke capability: it enumerates the public
// operations of a type and invokes one against a receiver.
type Invoker interface {
	// Operations returns the public operations of t in the order the
	// runtime reports them.
	Operations(t reflect.Type) []Operation

	// Operation looks up the operation of t with exactly the given name and
	// parameter types, without scanning.
	Operation(t reflect.Type, name string, params []reflect.Type) (Operation, error)

	// Invoke calls op on receiver with args. Failures wrap ErrNotPermitted
	// when the call itself is not allowed and ErrTargetFailed when the
	// operation ran and failed.
	Invoke(op Operation, receiver any, args []any) (any, error)
}
