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
	"sync"

	"dirpx.dev/perform/apis"
)

// NewLocked constructs a cache guarded by a single mutex. The compute
// function of LookupOrCompute runs under the mutex, so it must not call
// back into the cache.
func NewLocked() apis.Cache {
	return &locked{tab: newTable()}
}

type locked struct {
	mu    sync.Mutex
	tab   table
	stats counters
}

// Ensure locked implements apis.Cache.
var _ apis.Cache = (*locked)(nil)

func (c *locked) LookupOrCompute(t reflect.Type, name, selector string, compute func() apis.Entry) (apis.Entry, apis.Origin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, origin, ok := c.tab.lookup(t, name, selector)
	if !ok {
		e, origin = compute(), apis.Computed
		c.tab.set(t, name, selector, e)
	}
	c.stats.record(origin)
	return e, origin
}

func (c *locked) Promote(t reflect.Type, name, selector string, op apis.Operation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tab.promote(t, name, selector, op) {
		c.stats.promoted.Add(1)
	}
}

func (c *locked) Put(key apis.TypeKey, selector string, e apis.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab.put(key, selector, e)
}

func (c *locked) Records() []apis.Record {
	c.mu.Lock()
	recs := c.tab.appendRecords(make([]apis.Record, 0, c.tab.len()))
	c.mu.Unlock()
	sortRecords(recs)
	return recs
}

func (c *locked) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab.len()
}

func (c *locked) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab.clear()
	c.stats.reset()
}

func (c *locked) Stats() apis.CacheStats { return c.stats.snapshot() }
