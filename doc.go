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

// Package perform provides dynamic, name-based method dispatch: "perform
// the operation named selector on receiver with these arguments".
//
// # Design
//
// Dispatch goes through a Dispatcher (package dispatch) that owns four
// collaborators:
//
//   - Resolver: the expensive path. It translates the selector through a
//     small table ("+" becomes "plus") and scans the receiver type's
//     exported methods in the order reflect reports them. The first
//     method whose name matches wins; overloads are not disambiguated by
//     argument types. A Go method name matches a selector when it equals
//     it or equals it with the first letter upper-cased, so "toString"
//     finds ToString.
//
//   - Cache: a two-level table (type, selector) -> entry. An entry is
//     Resolved (a live operation), Deferred (a persisted locator not yet
//     bound to a type), NotFound (a memoized negative scan) or Opaque (a
//     persisted value this package does not interpret). Types are keyed by
//     identity; entries of a lazily loaded snapshot are keyed by type name
//     in a separate map until the type is first used.
//
//   - TypeIndex and Registry: Go cannot find a type by name, so every type
//     whose entries should survive a restart must be registered under a
//     stable name before a snapshot is loaded:
//
//     perform.Register[Invoice]("billing.Invoice")
//
//     Types reached while dispatching are registered automatically under
//     the name the naming chain gives them (apis.Namer, then the
//     registry, then "pkgpath.Type").
//
//   - Invoker: the reflective invoke capability. It reports "caller not
//     permitted" (wrong receiver, arity or argument types) separately from
//     "operation failed" (non-nil error result or panic).
//
// # Entry lifecycle
//
// Per (type, selector) an entry moves from absent to NotFound, Deferred or
// Resolved, and from Deferred to Resolved the first time it is used. No
// other transition happens until the cache is cleared or replaced.
//
// # Snapshots
//
// Save writes the cache in a compact big-endian binary format (package
// snapshot). Resolved operations are written as locators: the method name
// plus descriptors of its parameter types in Go syntax ("int64",
// "[]billing.Invoice", "func(int) bool"). Receivers of unnamed types are
// dispatched but not saved. Load binds every locator immediately and fails
// when a type or method is gone; LoadLazy keeps them Deferred and binds
// each on first use. Loading always replaces the whole cache and enables
// memoization.
//
// # Package API
//
// The package-level functions operate on a process-wide default
// Dispatcher published through an atomic pointer:
//
//	perform.SetMemoizationEnabled(true)
//	out, err := perform.Perform(invoice, "total")
//	err = perform.Save("methods.bin")
//
// SetConfig, SetBuilder and SetLogger take a short build lock, build a new
// Dispatcher that keeps the registry but not the cache, and publish it.
// Readers never lock.
//
// # Errors
//
// Perform fails with *apis.DoesNotUnderstandError when the type has no
// matching operation, *apis.InvocationError when the operation ran and
// failed, and *apis.ResolutionError when a stored entry cannot be bound
// (a stale snapshot). Load fails with *apis.SnapshotTypeNotFoundError
// when a type named in the snapshot cannot be located.
package perform
