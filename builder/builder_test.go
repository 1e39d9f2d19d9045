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

package builder_test

import (
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/builder"
	"dirpx.dev/perform/config"
	"dirpx.dev/perform/invoke"
	"dirpx.dev/perform/registry"
)

// userType is a plain named type with no special behavior.
// It is used to test fallback via reflection.
type userType struct{}

func (*userType) Greet(name string) string { return "hi " + name }

// hotType implements apis.Namer and is used to verify that the
// Namer-based strategy takes priority over other strategies.
type hotType struct{}

func (hotType) EntityName() string { return "hot-name" }

// Compile-time check: builder.New() must satisfy apis.Builder.
var _ apis.Builder = builder.New()

// TestBuildRegistry_MigratesPrevious asserts that BuildRegistry returns a
// working Registry and copies entries of a previous one.
func TestBuildRegistry_MigratesPrevious(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()

	// prev may be nil; this must still produce a valid registry.
	reg := b.BuildRegistry(cfg, nil)
	require.NotNil(t, reg)
	require.NoError(t, reg.Register(reflect.TypeOf(userType{}), "userType"))

	next := b.BuildRegistry(cfg, reg)
	got, ok := next.Lookup(reflect.TypeOf(userType{}))
	require.True(t, ok)
	assert.Equal(t, "userType", got)
	assert.Equal(t, 1, next.Count())

	// The copy is independent.
	next.Reset()
	assert.Equal(t, 1, reg.Count())
}

// TestBuildNaming_Order verifies naming priority:
// 1. If the type implements apis.Namer, use EntityName().
// 2. Otherwise, if the type is explicitly registered in the Registry, use that.
// 3. Otherwise, fall back to the reflect-based strategy ("pkg.Type").
func TestBuildNaming_Order(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()

	reg := b.BuildRegistry(cfg, nil)
	type fromRegistry struct{}
	require.NoError(t, reg.Register(reflect.TypeOf(fromRegistry{}), "reg-name"))

	naming := b.BuildNaming(cfg, reg)
	assert.Equal(t, "hot-name", naming.NameType(reflect.TypeOf(hotType{})))
	assert.Equal(t, "reg-name", naming.NameType(reflect.TypeOf(fromRegistry{})))

	got := naming.NameType(reflect.TypeOf(userType{}))
	assert.True(t, strings.HasSuffix(got, ".userType"), got)
}

// TestBuildNaming_WithExternalRegistry asserts that BuildNaming accepts any
// apis.Registry implementation, not only the one created by this builder.
func TestBuildNaming_WithExternalRegistry(t *testing.T) {
	r := registry.New(config.DefaultConfig())
	require.NoError(t, r.Register(reflect.TypeOf(userType{}), "u"))

	naming := builder.New().BuildNaming(config.DefaultConfig(), r)
	assert.Equal(t, "u", naming.NameType(reflect.TypeOf(userType{})))
}

func TestBuildTypeIndex_RoundTrip(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	reg := b.BuildRegistry(cfg, nil)
	idx := b.BuildTypeIndex(cfg, reg, b.BuildNaming(cfg, reg))

	name, err := idx.NameOf(reflect.TypeOf(&hotType{}))
	require.NoError(t, err)
	assert.Equal(t, "*hot-name", name)

	back, err := idx.TypeOf(name)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(&hotType{}), back)
}

func TestBuildResolver_UsesConfig(t *testing.T) {
	cfg := config.NewConfig(config.WithResolveDelay(time.Millisecond))
	res := builder.New().BuildResolver(cfg, invoke.New())
	assert.Equal(t, time.Millisecond, res.Delay())

	op, err := res.Resolve(reflect.TypeOf(&userType{}), "greet")
	require.NoError(t, err)
	assert.Equal(t, "Greet", op.Name)
}

func TestBuildCache_Fresh(t *testing.T) {
	b := builder.New()
	for _, s := range []apis.CacheStrategy{apis.Unsynchronized, apis.Locked, apis.Sharded} {
		cfg := config.NewConfig(config.WithCacheStrategy(s))
		c1, c2 := b.BuildCache(cfg), b.BuildCache(cfg)
		c1.Put(apis.TypeKey{Name: "x"}, "y", apis.NotFound{})
		assert.Equal(t, 1, c1.Len(), s.String())
		assert.Zero(t, c2.Len(), s.String())
	}
}

// TestBuild_Concurrency_Smoke hammers the naming chain and type index in
// parallel to ensure they are safe for concurrent use after being built.
func TestBuild_Concurrency_Smoke(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()

	reg := b.BuildRegistry(cfg, nil)
	_ = reg.Register(reflect.TypeOf(userType{}), "userType")
	naming := b.BuildNaming(cfg, reg)
	idx := b.BuildTypeIndex(cfg, reg, naming)

	types := []reflect.Type{
		reflect.TypeOf(userType{}),
		reflect.TypeOf(hotType{}),
		reflect.TypeOf(&userType{}),
		reflect.TypeOf([]userType{}),
	}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				tt := types[(i+id)%len(types)]
				if _, err := idx.NameOf(tt); err != nil {
					t.Errorf("NameOf(%v): %v", tt, err)
					return
				}
				_ = naming.NameType(reflect.TypeOf(hotType{}))
			}
		}(w)
	}

	wg.Wait()
}
