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

package perform

import (
	"errors"
	"io"
	"reflect"
	"time"

	"go.uber.org/zap"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/builder"
	"dirpx.dev/perform/config"
	"dirpx.dev/perform/dispatch"
)

// init publishes the default dispatcher.
func init() {
	s := &state{cfg: config.DefaultConfig(), bld: builder.New(), log: zap.NewNop()}
	d, err := s.build(nil)
	if err != nil {
		panic(err)
	}
	s.d = d
	st.Store(s)
}

var (
	// ErrNilDispatcher is returned when a nil dispatcher is published.
	ErrNilDispatcher = errors.New("perform: nil dispatcher")
)

// Perform invokes the operation named by selector on receiver using the
// default dispatcher.
func Perform(receiver any, selector string, args ...any) (any, error) {
	return st.Load().d.Perform(receiver, selector, args...)
}

// SetMemoizationEnabled turns memoization of the default dispatcher on or off.
func SetMemoizationEnabled(enabled bool) {
	st.Load().d.SetMemoizationEnabled(enabled)
}

// IsMemoizationEnabled reports whether the default dispatcher memoizes.
func IsMemoizationEnabled() bool {
	return st.Load().d.IsMemoizationEnabled()
}

// Save writes the default dispatcher's cache to path.
func Save(path string) error {
	return st.Load().d.Save(path)
}

// Load replaces the default dispatcher's cache with the snapshot at path,
// binding every entry eagerly.
func Load(path string) error {
	return st.Load().d.Load(path)
}

// LoadLazy replaces the default dispatcher's cache with the snapshot at
// path, deferring binding to first use.
func LoadLazy(path string) error {
	return st.Load().d.LoadLazy(path)
}

// Dump writes the sorted (type name, selector) listing of the default
// dispatcher's cache to w.
func Dump(w io.Writer) error {
	return st.Load().d.Dump(w)
}

// DumpFile writes the Dump listing to path.
func DumpFile(path string) error {
	return st.Load().d.DumpFile(path)
}

// SetResolveDelay sets the artificial scan delay of the default dispatcher.
func SetResolveDelay(d time.Duration) error {
	return st.Load().d.SetResolveDelay(d)
}

// ResolveDelay returns the artificial scan delay of the default dispatcher.
func ResolveDelay() time.Duration {
	return st.Load().d.ResolveDelay()
}

// RegisterType names t in the default dispatcher's registry.
func RegisterType(t reflect.Type, name string) error {
	return st.Load().d.Register(t, name)
}

// Register names T in the default dispatcher's registry.
func Register[T any](name string) error {
	return RegisterType(reflect.TypeFor[T](), name)
}

// Reset restores the default dispatcher's configured memoization default,
// empty cache and resolve delay. Registered names are kept.
func Reset() {
	st.Load().d.Reset()
}

// Default returns the default dispatcher.
func Default() *dispatch.Dispatcher {
	return st.Load().d
}

// SetDefault publishes d as the default dispatcher.
func SetDefault(d *dispatch.Dispatcher) error {
	if d == nil {
		return ErrNilDispatcher
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(&state{cfg: d.Config(), bld: old.bld, log: old.log, d: d})
	return nil
}

// Config returns the configuration of the default dispatcher.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig rebuilds the default dispatcher with cfg. The registry carries
// over; the cache does not.
func SetConfig(cfg apis.Config) error {
	return rebuild(func(s *state) { s.cfg = cfg })
}

// SetBuilder rebuilds the default dispatcher with b. The registry carries
// over; the cache does not.
func SetBuilder(b apis.Builder) error {
	if b == nil {
		return nil
	}
	return rebuild(func(s *state) { s.bld = b })
}

// SetLogger rebuilds the default dispatcher with log. The registry carries
// over; the cache does not.
func SetLogger(log *zap.Logger) error {
	if log == nil {
		return nil
	}
	return rebuild(func(s *state) { s.log = log })
}

func rebuild(mutate func(s *state)) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := &state{cfg: old.cfg, bld: old.bld, log: old.log}
	mutate(next)

	d, err := next.build(old.d.Registry())
	if err != nil {
		return err
	}
	next.d = d
	st.Store(next)
	return nil
}
