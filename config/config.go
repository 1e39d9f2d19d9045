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

package config

import (
	"time"

	"dirpx.dev/perform/apis"
)

const (
	// DefaultMemoize represents the default for Memoize.
	// Memoization is opt-in, as it is for a freshly reset Dispatcher.
	DefaultMemoize = false
	// DefaultResolveDelay represents the default for ResolveDelay.
	DefaultResolveDelay time.Duration = 0
	// DefaultCacheStrategy represents the default for CacheStrategy.
	DefaultCacheStrategy = apis.Unsynchronized
	// DefaultShards represents the default for Shards.
	DefaultShards = 16
	// DefaultCompression represents the default for Compression.
	DefaultCompression = apis.CompressionNone
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Memoize:       DefaultMemoize,
		ResolveDelay:  DefaultResolveDelay,
		CacheStrategy: DefaultCacheStrategy,
		Shards:        DefaultShards,
		Compression:   DefaultCompression,
		MaxUnwrap:     DefaultMaxUnwrap,
	}
}

// Normalize resets out-of-range values to their defaults.
// A negative ResolveDelay is clamped to zero here; the runtime setter
// rejects it instead.
func Normalize(cfg apis.Config) apis.Config {
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.Shards <= 0 {
		cfg.Shards = DefaultShards
	}
	if cfg.ResolveDelay < 0 {
		cfg.ResolveDelay = 0
	}
	switch cfg.CacheStrategy {
	case apis.Unsynchronized, apis.Locked, apis.Sharded:
	default:
		cfg.CacheStrategy = DefaultCacheStrategy
	}
	switch cfg.Compression {
	case apis.CompressionNone, apis.CompressionZstd, apis.CompressionLZ4:
	default:
		cfg.Compression = DefaultCompression
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMemoize sets the Memoize option.
func WithMemoize(enabled bool) Option {
	return func(c *apis.Config) {
		c.Memoize = enabled
	}
}

// WithResolveDelay sets the ResolveDelay option.
// A negative value resets to the default.
func WithResolveDelay(d time.Duration) Option {
	return func(c *apis.Config) {
		if d < 0 {
			c.ResolveDelay = DefaultResolveDelay
			return
		}
		c.ResolveDelay = d
	}
}

// WithCacheStrategy sets the CacheStrategy option.
func WithCacheStrategy(s apis.CacheStrategy) Option {
	return func(c *apis.Config) {
		c.CacheStrategy = s
	}
}

// WithShards sets the Shards option.
// A non-positive value resets to the default.
func WithShards(n int) Option {
	return func(c *apis.Config) {
		if n <= 0 {
			c.Shards = DefaultShards
			return
		}
		c.Shards = n
	}
}

// WithCompression sets the Compression option.
func WithCompression(comp apis.Compression) Option {
	return func(c *apis.Config) {
		c.Compression = comp
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}
