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
	"time"
)

// Config carries read-only dispatch knobs.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Memoize controls whether a fresh Dispatcher starts with memoization
	// enabled. It can be toggled at runtime afterwards.
	Memoize bool

	// ResolveDelay is an artificial delay injected ahead of every uncached
	// method scan. It exists only to make cache effectiveness measurable.
	ResolveDelay time.Duration

	// CacheStrategy selects the concurrency model of the method cache.
	CacheStrategy CacheStrategy

	// Shards is the number of shards used by the Sharded cache strategy.
	Shards int

	// Compression selects the whole-stream compression of snapshot files.
	Compression Compression

	// MaxUnwrap limits type descriptor nesting (ptr/slice/array/chan/map).
	// Acts as a safety guard against pathological nesting.
	MaxUnwrap int
}

// CacheStrategy selects how a method cache synchronizes its mutators.
type CacheStrategy int

const (
	// Unsynchronized assumes a single logical mutator and does no locking.
	Unsynchronized CacheStrategy = iota
	// Locked guards lookup-or-compute with a single mutex.
	Locked
	// Sharded spreads entries over mutex-guarded shards and coalesces
	// concurrent computations for the same key.
	Sharded
)

// String returns a short, stable identifier for the strategy.
// Unknown values render as "Unknown(<n>)" and never panic.
func (s CacheStrategy) String() string {
	switch s {
	case Unsynchronized:
		return "unsynchronized"
	case Locked:
		return "locked"
	case Sharded:
		return "sharded"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Compression selects the compression applied to a whole snapshot stream.
type Compression int

const (
	// CompressionNone writes the binary snapshot as is.
	CompressionNone Compression = iota
	// CompressionZstd wraps the snapshot in a zstd frame.
	CompressionZstd
	// CompressionLZ4 wraps the snapshot in an lz4 frame.
	CompressionLZ4
)

// String returns a short, stable identifier for the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}
