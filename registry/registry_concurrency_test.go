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

package registry_test

import (
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/config"
	"dirpx.dev/perform/registry"
)

type (
	Invoice  struct{}
	Receipt  struct{}
	Refund   struct{}
	Voucher  struct{}
	Payment  struct{}
	Transfer struct{}
	Deposit  struct{}
	Payout   struct{}
)

var contenders = []reflect.Type{
	reflect.TypeOf(Invoice{}), reflect.TypeOf(Receipt{}), reflect.TypeOf(Refund{}),
	reflect.TypeOf(Voucher{}), reflect.TypeOf(Payment{}), reflect.TypeOf(Transfer{}),
	reflect.TypeOf(Deposit{}), reflect.TypeOf(Payout{}),
}

// TestConcurrentRegister_SameNameDifferentTypes races every contender for
// one name. Exactly one wins; everyone else sees a conflict, and both
// directions of the index agree on the winner.
func TestConcurrentRegister_SameNameDifferentTypes(t *testing.T) {
	for round := 0; round < 50; round++ {
		reg := registry.New(config.DefaultConfig())
		const name = "billing.Document"

		var (
			wg        sync.WaitGroup
			start     = make(chan struct{})
			wins      atomic.Int32
			conflicts atomic.Int32
		)
		workers := runtime.GOMAXPROCS(0) * 4
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func(id int) {
				defer wg.Done()
				<-start
				err := reg.Register(contenders[id%len(contenders)], name)
				switch {
				case err == nil:
					wins.Add(1)
				case assert.ErrorIs(t, err, registry.ErrConflictingRegistration):
					conflicts.Add(1)
				}
				// Readers never observe a half-registered name.
				if back, ok := reg.Type(name); ok {
					got, found := reg.Lookup(back)
					assert.True(t, found)
					assert.Equal(t, name, got)
				}
			}(w)
		}
		close(start)
		wg.Wait()

		winner, ok := reg.Type(name)
		require.True(t, ok)
		require.Equal(t, 1, reg.Count())

		// Re-registrations of the winner are idempotent and count as wins.
		sameAsWinner := 0
		for w := 0; w < workers; w++ {
			if contenders[w%len(contenders)] == winner {
				sameAsWinner++
			}
		}
		assert.EqualValues(t, sameAsWinner, wins.Load())
		assert.EqualValues(t, workers-sameAsWinner, conflicts.Load())

		for _, c := range contenders {
			got, found := reg.Lookup(c)
			if c == winner {
				assert.True(t, found)
				assert.Equal(t, name, got)
			} else {
				assert.False(t, found, "loser %v must not be indexed", c)
			}
		}
	}
}

// TestConcurrentRegister_SameTypeDifferentNames races names for one type.
func TestConcurrentRegister_SameTypeDifferentNames(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	typ := reflect.TypeOf(&Invoice{})
	names := []string{"billing.Invoice", "ledger.Invoice", "v2.Invoice", "legacy.Invoice"}

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	workers := runtime.GOMAXPROCS(0) * 4
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			<-start
			for i := 0; i < 200; i++ {
				err := reg.Register(typ, names[(id+i)%len(names)])
				if err != nil {
					assert.ErrorIs(t, err, registry.ErrConflictingRegistration)
				}
			}
		}(w)
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, reg.Count())
	name, ok := reg.Lookup(typ)
	require.True(t, ok)
	back, ok := reg.Type(name)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(Invoice{}), back, "pointers normalize to the named type")

	registered := 0
	for _, n := range names {
		if _, ok := reg.Type(n); ok {
			registered++
		}
	}
	assert.Equal(t, 1, registered)
}

// TestConcurrentRegisterAndLookup mixes distinct registrations with reverse
// lookups and Entries snapshots.
func TestConcurrentRegisterAndLookup(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	names := make([]string, len(contenders))
	for i, c := range contenders {
		names[i] = "billing." + c.Name()
	}

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0) * 4
	wg.Add(2 * workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				j := (i + id) % len(contenders)
				assert.NoError(t, reg.Register(contenders[j], names[j]))
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				j := i % len(contenders)
				if back, ok := reg.Type(names[j]); ok {
					assert.Equal(t, contenders[j], back)
				}
				assert.LessOrEqual(t, len(reg.Entries()), len(contenders))
			}
		}()
	}
	wg.Wait()

	require.Equal(t, len(contenders), reg.Count())
	for i, c := range contenders {
		got, ok := reg.Lookup(c)
		require.True(t, ok)
		assert.Equal(t, names[i], got)
	}
}

func TestReset_EntriesSnapshotSurvives(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	require.NoError(t, reg.Register(reflect.TypeOf(Invoice{}), "billing.Invoice"))
	require.NoError(t, reg.Register(reflect.TypeOf(Receipt{}), "billing.Receipt"))

	snap := reg.Entries()
	reg.Reset()

	assert.Zero(t, reg.Count())
	_, ok := reg.Type("billing.Invoice")
	assert.False(t, ok)
	require.Len(t, snap, 2)
	assert.ElementsMatch(t, []apis.RegistryEntry{
		{Type: reflect.TypeOf(Invoice{}), Name: "billing.Invoice"},
		{Type: reflect.TypeOf(Receipt{}), Name: "billing.Receipt"},
	}, snap)

	// Names freed by Reset can be claimed by another type.
	require.NoError(t, reg.Register(reflect.TypeOf(Refund{}), "billing.Invoice"))
}
