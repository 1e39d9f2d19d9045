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
	"reflect"
)

// TypeKey identifies a type in a Cache. The identity form (Type != nil) is
// compared by type identity; the name form (Type == nil) is used only for
// entries of a lazily loaded snapshot whose type has not been touched yet.
// Name is always set: for identity keys it is the name the type is
// persisted under.
type TypeKey struct {
	Type reflect.Type
	Name string
}

// IsIdentity reports whether k is in identity form.
func (k TypeKey) IsIdentity() bool { return k.Type != nil }

// Record is a single (TypeKey, selector, Entry) triple of a Cache snapshot.
type Record struct {
	Key      TypeKey
	Selector string
	Entry    Entry
}

// Origin reports how LookupOrCompute produced its entry.
type Origin int

const (
	// Hit means the entry was already stored under the identity key.
	Hit Origin = iota
	// Adopted means a name-form entry was consumed and moved under the
	// identity key.
	Adopted
	// Computed means the compute function ran and its result was stored.
	Computed
)

// String returns a short name for the origin.
func (o Origin) String() string {
	switch o {
	case Hit:
		return "hit"
	case Adopted:
		return "adopted"
	case Computed:
		return "computed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// CacheStats are cumulative counters of a Cache.
type CacheStats struct {
	Hits     uint64
	Adopted  uint64
	Computed uint64
	Promoted uint64
}

// Cache is the two-level (type, selector) -> Entry table.
//
// Identity-form and name-form entries live in structurally distinct maps.
// Entries move from the name form to the identity form only through
// LookupOrCompute.
type Cache interface {
	// LookupOrCompute returns the entry for (t, selector). On a miss it first
	// consumes a name-form entry stored under (name, selector) and re-keys it
	// under t; only if there is none does it call compute, exactly once, and
	// store the result.
	LookupOrCompute(t reflect.Type, name, selector string, compute func() Entry) (Entry, Origin)

	// Promote overwrites a Deferred or absent entry for (t, selector) with
	// Resolved{op}. Other entries are left untouched. Idempotent.
	Promote(t reflect.Type, name, selector string, op Operation)

	// Put stores e under key. Used to populate a cache from a snapshot.
	Put(key TypeKey, selector string, e Entry)

	// Records returns all entries sorted by type name, identity form before
	// name form, then selector.
	Records() []Record

	// Len returns the number of stored entries.
	Len() int

	// Clear removes all entries.
	Clear()

	// Stats returns cumulative counters.
	Stats() CacheStats
}
