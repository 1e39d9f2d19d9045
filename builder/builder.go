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

package builder

import (
	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/cache"
	"dirpx.dev/perform/registry"
	"dirpx.dev/perform/resolver"
	"dirpx.dev/perform/strategy"
	"dirpx.dev/perform/typeindex"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry based on the provided configuration
// and pre-existing registry. If a pre-existing registry is provided, its entries are copied
// into the new registry.
func (b *builder) BuildRegistry(cfg apis.Config, preg apis.Registry) apis.Registry {
	nreg := registry.New(cfg)
	if preg != nil {
		for _, e := range preg.Entries() {
			_ = nreg.Register(e.Type, e.Name)
		}
	}
	return nreg
}

// BuildNaming builds the Namer -> Registry -> Reflect naming chain over reg.
func (b *builder) BuildNaming(_ apis.Config, reg apis.Registry) apis.Naming {
	return strategy.NewChain(
		strategy.NewNamerStrategy(),
		strategy.NewRegistryStrategy(reg),
		strategy.NewReflectStrategy(),
	)
}

// BuildTypeIndex builds the descriptor index over reg and naming.
func (b *builder) BuildTypeIndex(cfg apis.Config, reg apis.Registry, naming apis.Naming) apis.TypeIndex {
	return typeindex.New(cfg, reg, naming)
}

// BuildResolver builds the scanning resolver over inv with the default
// selector translations and the configured delay.
func (b *builder) BuildResolver(cfg apis.Config, inv apis.Invoker) apis.Resolver {
	return resolver.New(cfg, inv)
}

// BuildCache builds an empty cache with the configured concurrency strategy.
func (b *builder) BuildCache(cfg apis.Config) apis.Cache {
	return cache.New(cfg)
}
