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
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/config"
)

// NewSharded constructs a cache spread over n mutex-guarded shards.
// Concurrent misses for the same key are coalesced so compute runs once;
// compute runs outside the shard lock. n <= 0 selects config.DefaultShards.
func NewSharded(n int) apis.Cache {
	if n <= 0 {
		n = config.DefaultShards
	}
	c := &sharded{shards: make([]*shard, n)}
	for i := range c.shards {
		c.shards[i] = &shard{tab: newTable()}
	}
	return c
}

type shard struct {
	mu  sync.Mutex
	tab table
}

type sharded struct {
	shards []*shard
	group  singleflight.Group
	stats  counters
}

// Ensure sharded implements apis.Cache.
var _ apis.Cache = (*sharded)(nil)

// shard picks the shard by type name so that an identity key and the
// name-form entry it adopts always meet in the same shard.
func (c *sharded) shard(name, selector string) *shard {
	h := xxhash.Sum64String(name + "\x00" + selector)
	return c.shards[h%uint64(len(c.shards))]
}

type outcome struct {
	entry  apis.Entry
	origin apis.Origin
}

func (c *sharded) LookupOrCompute(t reflect.Type, name, selector string, compute func() apis.Entry) (apis.Entry, apis.Origin) {
	s := c.shard(name, selector)

	s.mu.Lock()
	e, origin, ok := s.tab.lookup(t, name, selector)
	s.mu.Unlock()
	if ok {
		c.stats.record(origin)
		return e, origin
	}

	key := strconv.FormatUint(uint64(reflect.ValueOf(t).Pointer()), 16) + "\x00" + selector
	leader := false
	v, _, _ := c.group.Do(key, func() (any, error) {
		leader = true

		s.mu.Lock()
		if e, origin, ok := s.tab.lookup(t, name, selector); ok {
			s.mu.Unlock()
			return outcome{e, origin}, nil
		}
		s.mu.Unlock()

		e := compute()

		s.mu.Lock()
		defer s.mu.Unlock()
		if prev, ok := s.tab.get(t, selector); ok {
			return outcome{prev, apis.Hit}, nil
		}
		s.tab.set(t, name, selector, e)
		return outcome{e, apis.Computed}, nil
	})

	out := v.(outcome)
	if !leader {
		out.origin = apis.Hit
	}
	c.stats.record(out.origin)
	return out.entry, out.origin
}

func (c *sharded) Promote(t reflect.Type, name, selector string, op apis.Operation) {
	s := c.shard(name, selector)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tab.promote(t, name, selector, op) {
		c.stats.promoted.Add(1)
	}
}

func (c *sharded) Put(key apis.TypeKey, selector string, e apis.Entry) {
	s := c.shard(key.Name, selector)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab.put(key, selector, e)
}

func (c *sharded) Records() []apis.Record {
	var recs []apis.Record
	for _, s := range c.shards {
		s.mu.Lock()
		recs = s.tab.appendRecords(recs)
		s.mu.Unlock()
	}
	sortRecords(recs)
	return recs
}

func (c *sharded) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.tab.len()
		s.mu.Unlock()
	}
	return n
}

func (c *sharded) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.tab.clear()
		s.mu.Unlock()
	}
	c.stats.reset()
}

func (c *sharded) Stats() apis.CacheStats { return c.stats.snapshot() }
