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

package cache

import (
	"reflect"
	"slices"
	"strings"
	"sync/atomic"

	"dirpx.dev/perform/apis"
)

// bucket holds the entries of one identity-form type key.
type bucket struct {
	name    string
	entries map[string]apis.Entry
}

// table is the unsynchronized two-level map shared by all cache variants.
// Identity-form and name-form keys live in different maps so a type name
// can never collide with a type handle.
type table struct {
	byType map[reflect.Type]*bucket
	byName map[string]map[string]apis.Entry
}

func newTable() table {
	return table{
		byType: make(map[reflect.Type]*bucket),
		byName: make(map[string]map[string]apis.Entry),
	}
}

func (tb *table) get(t reflect.Type, selector string) (apis.Entry, bool) {
	b, ok := tb.byType[t]
	if !ok {
		return nil, false
	}
	e, ok := b.entries[selector]
	return e, ok
}

func (tb *table) set(t reflect.Type, name, selector string, e apis.Entry) {
	b, ok := tb.byType[t]
	if !ok {
		b = &bucket{name: name, entries: make(map[string]apis.Entry)}
		tb.byType[t] = b
	}
	b.entries[selector] = e
}

// adopt moves the name-form entry (name, selector) under the identity key t.
func (tb *table) adopt(t reflect.Type, name, selector string) (apis.Entry, bool) {
	sels, ok := tb.byName[name]
	if !ok {
		return nil, false
	}
	e, ok := sels[selector]
	if !ok {
		return nil, false
	}
	delete(sels, selector)
	if len(sels) == 0 {
		delete(tb.byName, name)
	}
	tb.set(t, name, selector, e)
	return e, true
}

// lookup returns the identity-form entry or adopts a name-form one.
func (tb *table) lookup(t reflect.Type, name, selector string) (apis.Entry, apis.Origin, bool) {
	if e, ok := tb.get(t, selector); ok {
		return e, apis.Hit, true
	}
	if e, ok := tb.adopt(t, name, selector); ok {
		return e, apis.Adopted, true
	}
	return nil, 0, false
}

// promote reports whether the entry was overwritten.
func (tb *table) promote(t reflect.Type, name, selector string, op apis.Operation) bool {
	if e, ok := tb.get(t, selector); ok {
		if _, deferred := e.(apis.Deferred); !deferred {
			return false
		}
	}
	tb.set(t, name, selector, apis.Resolved{Op: op})
	return true
}

func (tb *table) put(key apis.TypeKey, selector string, e apis.Entry) {
	if key.IsIdentity() {
		tb.set(key.Type, key.Name, selector, e)
		return
	}
	sels, ok := tb.byName[key.Name]
	if !ok {
		sels = make(map[string]apis.Entry)
		tb.byName[key.Name] = sels
	}
	sels[selector] = e
}

func (tb *table) appendRecords(out []apis.Record) []apis.Record {
	for t, b := range tb.byType {
		for sel, e := range b.entries {
			out = append(out, apis.Record{Key: apis.TypeKey{Type: t, Name: b.name}, Selector: sel, Entry: e})
		}
	}
	for name, sels := range tb.byName {
		for sel, e := range sels {
			out = append(out, apis.Record{Key: apis.TypeKey{Name: name}, Selector: sel, Entry: e})
		}
	}
	return out
}

func (tb *table) len() int {
	n := 0
	for _, b := range tb.byType {
		n += len(b.entries)
	}
	for _, sels := range tb.byName {
		n += len(sels)
	}
	return n
}

func (tb *table) clear() {
	clear(tb.byType)
	clear(tb.byName)
}

// sortRecords orders records by type name, identity form first, then selector.
func sortRecords(recs []apis.Record) {
	slices.SortFunc(recs, func(a, b apis.Record) int {
		if c := strings.Compare(a.Key.Name, b.Key.Name); c != 0 {
			return c
		}
		if ai, bi := a.Key.IsIdentity(), b.Key.IsIdentity(); ai != bi {
			if ai {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Selector, b.Selector)
	})
}

// counters backs apis.CacheStats.
type counters struct {
	hits, adopted, computed, promoted atomic.Uint64
}

func (c *counters) record(o apis.Origin) {
	switch o {
	case apis.Hit:
		c.hits.Add(1)
	case apis.Adopted:
		c.adopted.Add(1)
	case apis.Computed:
		c.computed.Add(1)
	}
}

func (c *counters) snapshot() apis.CacheStats {
	return apis.CacheStats{
		Hits:     c.hits.Load(),
		Adopted:  c.adopted.Load(),
		Computed: c.computed.Load(),
		Promoted: c.promoted.Load(),
	}
}

func (c *counters) reset() {
	c.hits.Store(0)
	c.adopted.Store(0)
	c.computed.Store(0)
	c.promoted.Store(0)
}
