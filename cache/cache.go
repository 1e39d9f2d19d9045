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

	"dirpx.dev/perform/apis"
)

// New constructs an empty apis.Cache with the concurrency model selected by
// cfg.CacheStrategy. Unknown strategies fall back to Unsynchronized.
func New(cfg apis.Config) apis.Cache {
	switch cfg.CacheStrategy {
	case apis.Locked:
		return NewLocked()
	case apis.Sharded:
		return NewSharded(cfg.Shards)
	default:
		return NewUnsynchronized()
	}
}

// NewUnsynchronized constructs a cache for a single logical mutator.
// Concurrent mutation is a data race.
func NewUnsynchronized() apis.Cache {
	return &unsynchronized{tab: newTable()}
}

type unsynchronized struct {
	tab   table
	stats counters
}

// Ensure unsynchronized implements apis.Cache.
var _ apis.Cache = (*unsynchronized)(nil)

func (c *unsynchronized) LookupOrCompute(t reflect.Type, name, selector string, compute func() apis.Entry) (apis.Entry, apis.Origin) {
	e, origin, ok := c.tab.lookup(t, name, selector)
	if !ok {
		e, origin = compute(), apis.Computed
		c.tab.set(t, name, selector, e)
	}
	c.stats.record(origin)
	return e, origin
}

func (c *unsynchronized) Promote(t reflect.Type, name, selector string, op apis.Operation) {
	if c.tab.promote(t, name, selector, op) {
		c.stats.promoted.Add(1)
	}
}

func (c *unsynchronized) Put(key apis.TypeKey, selector string, e apis.Entry) {
	c.tab.put(key, selector, e)
}

func (c *unsynchronized) Records() []apis.Record {
	recs := c.tab.appendRecords(make([]apis.Record, 0, c.tab.len()))
	sortRecords(recs)
	return recs
}

func (c *unsynchronized) Len() int { return c.tab.len() }

func (c *unsynchronized) Clear() {
	c.tab.clear()
	c.stats.reset()
}

func (c *unsynchronized) Stats() apis.CacheStats { return c.stats.snapshot() }
