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

package registry

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/config"
	uref "dirpx.dev/perform/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("perform(registry): nil reflect.Type provided")
	// ErrEmptyName is returned when an empty name is provided.
	ErrEmptyName = errors.New("perform(registry): empty name provided")
	// ErrConflictingRegistration indicates an attempt to re-register
	// a type with a different name, or a name with a different type.
	ErrConflictingRegistration = errors.New("perform(registry): conflicting type registration")
)

// New constructs a Registry that normalizes types according to cfg.
func New(cfg apis.Config) apis.Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &registry{cfg: cfg}
}

// registry is a bidirectional Registry implementation backed by sync.Map.
type registry struct {
	// cfg is the configuration used for type normalization.
	cfg apis.Config
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// byType maps reflect.Type to registered name.
	byType sync.Map // map[reflect.Type]string
	// byName maps registered name to reflect.Type.
	byName sync.Map // map[string]reflect.Type
	// count tracks the number of registered entries.
	count int
}

// Register associates the nearest named type of t with the given name.
// It is idempotent for the same (type,name) pair.
func (r *registry) Register(t reflect.Type, name string) error {
	// Validate inputs early.
	if t == nil {
		return ErrNilType
	}
	if name == "" {
		return ErrEmptyName
	}

	// Normalize to the nearest named type according to r.cfg.
	b, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return err
	}

	// Fast read path: idempotency / conflict check without locking.
	if done, err := r.check(b, name); done {
		return err
	}

	// Write path: guard with a mutex to keep both maps and the counter consistent.
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if done, err := r.check(b, name); done {
		return err
	}

	r.byType.Store(b, name)
	r.byName.Store(name, b)
	r.count++
	return nil
}

// check reports whether (t, name) is already decided: either registered
// (nil error) or conflicting.
func (r *registry) check(t reflect.Type, name string) (bool, error) {
	if old, ok := r.byType.Load(t); ok {
		if old.(string) == name {
			return true, nil
		}
		return true, ErrConflictingRegistration
	}
	if _, ok := r.byName.Load(name); ok {
		return true, ErrConflictingRegistration
	}
	return false, nil
}

// Lookup returns the name registered for the nearest named type of t.
func (r *registry) Lookup(t reflect.Type) (name string, ok bool) {
	if t == nil {
		return "", false
	}
	nt, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return "", false
	}
	if v, ok := r.byType.Load(nt); ok {
		return v.(string), true
	}
	return "", false
}

// Type returns the type registered under name.
func (r *registry) Type(name string) (reflect.Type, bool) {
	if v, ok := r.byName.Load(name); ok {
		return v.(reflect.Type), true
	}
	return nil, false
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry) Entries() []apis.RegistryEntry {
	entries := make([]apis.RegistryEntry, 0, r.Count())
	r.byType.Range(func(key, value any) bool {
		entries = append(entries, apis.RegistryEntry{
			Type: key.(reflect.Type),
			Name: value.(string),
		})
		return true
	})
	return entries
}

// Count returns the number of registered entries.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType.Clear()
	r.byName.Clear()
	r.count = 0
}
