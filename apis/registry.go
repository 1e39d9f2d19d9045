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

// Registry maps named Go types to stable names and back.
// Go cannot locate a type by name at runtime, so every type that must be
// found again when a snapshot is loaded has to be registered here.
type Registry interface {
	// Register associates a (nearest named) reflect.Type with a fixed name.
	// Implementations should be idempotent; conflicting re-registrations fail.
	Register(t reflect.Type, name string) error
	// Lookup returns the name registered for a type.
	Lookup(t reflect.Type) (name string, ok bool)
	// Type returns the type registered under name.
	Type(name string) (t reflect.Type, ok bool)
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []RegistryEntry
	// Count returns the number of registered entries.
	Count() int
	// Reset clears all registered entries.
	Reset()
}

// RegistryEntry is a single (type, name) association in a Registry snapshot.
type RegistryEntry struct {
	// Type is the registered reflect.Type.
	Type reflect.Type
	// Name is the associated name.
	Name string
}
