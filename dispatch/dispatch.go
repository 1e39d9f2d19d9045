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

// Package dispatch implements name-based method dispatch ("perform") with an
// optional memoizing method cache that can be saved to and loaded from
// snapshots.
package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/config"
	"dirpx.dev/perform/snapshot"
)

var (
	// ErrNilComponent is returned when a builder returns a nil collaborator.
	ErrNilComponent = errors.New("perform(dispatch): builder returned nil component")
)

// memo is the published cache; a nil *memo means memoization is disabled.
type memo struct {
	cache apis.Cache
}

// Dispatcher performs operations by selector on arbitrary receivers.
//
// Perform is safe for concurrent use when the configured cache strategy is
// Locked or Sharded. Memoization toggling, Load and Reset are serialized
// with each other and publish a new cache atomically.
type Dispatcher struct {
	cfg  apis.Config
	log  *zap.Logger
	bld  apis.Builder
	inv  apis.Invoker
	reg  apis.Registry
	idx  apis.TypeIndex
	res  apis.Resolver
	bind snapshot.BindFunc

	mu   sync.Mutex
	memo atomic.Pointer[memo]
}

// New constructs a Dispatcher. Memoization starts enabled when the
// configuration says so. The builder must produce every collaborator,
// including a cache, or New fails with ErrNilComponent.
func New(opts ...Option) (*Dispatcher, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := config.Normalize(o.cfg)

	reg := o.reg
	if reg == nil {
		reg = o.bld.BuildRegistry(cfg, nil)
	}
	naming := o.bld.BuildNaming(cfg, reg)
	idx := o.bld.BuildTypeIndex(cfg, reg, naming)
	res := o.bld.BuildResolver(cfg, o.inv)
	if reg == nil || naming == nil || idx == nil || res == nil {
		return nil, ErrNilComponent
	}

	d := &Dispatcher{
		cfg:  cfg,
		log:  o.log,
		bld:  o.bld,
		inv:  o.inv,
		reg:  reg,
		idx:  idx,
		res:  res,
		bind: snapshot.Binder(idx, o.inv),
	}
	c, err := d.newCache()
	if err != nil {
		return nil, err
	}
	if cfg.Memoize {
		d.memo.Store(&memo{cache: c})
	}
	return d, nil
}

func (d *Dispatcher) newCache() (apis.Cache, error) {
	c := d.bld.BuildCache(d.cfg)
	if c == nil {
		return nil, ErrNilComponent
	}
	return c, nil
}

// Perform invokes the operation of receiver named by selector with args.
//
// It fails with *apis.DoesNotUnderstandError when the receiver's type has
// no such operation, *apis.InvocationError when the operation ran and
// failed, and *apis.ResolutionError when a stored entry cannot be bound to
// the receiver's type.
func (d *Dispatcher) Perform(receiver any, selector string, args ...any) (any, error) {
	if receiver == nil {
		return nil, fmt.Errorf("%w: nil receiver for '%s'", apis.ErrInvalidArgument, selector)
	}
	t := reflect.TypeOf(receiver)
	name := d.typeName(t)

	m := d.memo.Load()
	if m == nil {
		op, err := d.res.Resolve(t, selector)
		if err != nil {
			return nil, &apis.DoesNotUnderstandError{TypeName: name, Selector: selector}
		}
		return d.invoke(name, selector, op, receiver, args)
	}

	e, origin := m.cache.LookupOrCompute(t, name, selector, func() apis.Entry {
		d.log.Debug("resolving selector", zap.String("type", name), zap.String("selector", selector))
		op, err := d.res.Resolve(t, selector)
		if err != nil {
			return apis.NotFound{}
		}
		return apis.Resolved{Op: op}
	})
	if origin == apis.Adopted {
		d.log.Debug("adopted snapshot entry", zap.String("type", name), zap.String("selector", selector))
	}

	switch v := e.(type) {
	case apis.Resolved:
		return d.invoke(name, selector, v.Op, receiver, args)

	case apis.Deferred:
		op, err := d.bind(t, v.Locator)
		if err != nil {
			return nil, &apis.ResolutionError{
				TypeName: name,
				Selector: selector,
				Payload:  v.Locator.String(),
				Err:      err,
			}
		}
		m.cache.Promote(t, name, selector, op)
		d.log.Debug("materialized locator",
			zap.String("type", name),
			zap.String("selector", selector),
			zap.Stringer("locator", v.Locator))
		return d.invoke(name, selector, op, receiver, args)

	case apis.NotFound:
		return nil, &apis.DoesNotUnderstandError{TypeName: name, Selector: selector}

	default:
		return nil, &apis.ResolutionError{TypeName: name, Selector: selector, Payload: fmt.Sprint(e)}
	}
}

func (d *Dispatcher) invoke(name, selector string, op apis.Operation, receiver any, args []any) (any, error) {
	out, err := d.inv.Invoke(op, receiver, args)
	if err != nil {
		return nil, &apis.InvocationError{TypeName: name, Selector: selector, Err: err}
	}
	return out, nil
}

// typeName returns the descriptor of t, or t's Go syntax when t cannot be
// described (unnamed structs). Entries of such types are not saved.
func (d *Dispatcher) typeName(t reflect.Type) string {
	name, err := d.idx.NameOf(t)
	if err != nil {
		return t.String()
	}
	return name
}

// SetMemoizationEnabled turns memoization on or off. Turning it off
// discards the cache; turning it on when it is off starts with an empty one.
// If the builder no longer produces a cache, memoization stays off.
func (d *Dispatcher) SetMemoizationEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case !enabled:
		d.memo.Store(nil)
	case d.memo.Load() == nil:
		d.enable()
	}
}

// enable publishes a fresh cache. Callers hold d.mu.
func (d *Dispatcher) enable() {
	c, err := d.newCache()
	if err != nil {
		d.log.Error("memoization not enabled", zap.Error(err))
		return
	}
	d.memo.Store(&memo{cache: c})
}

// IsMemoizationEnabled reports whether memoization is enabled.
func (d *Dispatcher) IsMemoizationEnabled() bool {
	return d.memo.Load() != nil
}

// SetResolveDelay sets the artificial delay ahead of every uncached scan.
// Negative delays fail with apis.ErrInvalidArgument.
func (d *Dispatcher) SetResolveDelay(delay time.Duration) error {
	return d.res.SetDelay(delay)
}

// ResolveDelay returns the artificial scan delay.
func (d *Dispatcher) ResolveDelay() time.Duration {
	return d.res.Delay()
}

// Register names t so snapshots that mention it can be loaded by a fresh
// process.
func (d *Dispatcher) Register(t reflect.Type, name string) error {
	return d.reg.Register(t, name)
}

// Registry returns the registry.
func (d *Dispatcher) Registry() apis.Registry {
	return d.reg
}

// Config returns the normalized configuration.
func (d *Dispatcher) Config() apis.Config {
	return d.cfg
}

// Cache returns the current cache, or nil when memoization is disabled.
func (d *Dispatcher) Cache() apis.Cache {
	if m := d.memo.Load(); m != nil {
		return m.cache
	}
	return nil
}

// Reset restores the configured memoization default with an empty cache
// and the configured resolve delay.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.memo.Store(nil)
	if d.cfg.Memoize {
		d.enable()
	}
	_ = d.res.SetDelay(d.cfg.ResolveDelay)
}
