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

package snapshot

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"dirpx.dev/perform/apis"
	uref "dirpx.dev/perform/utils/reflect"
)

// Capture converts the records of a cache into a Snapshot.
//
// Identity-form and name-form records of the same type name are merged into
// one class; the identity-form entry wins for a selector present in both.
// Resolved operations are written as locators whose parameter types are
// described through idx. NotFound is written as an opaque value of kind
// KindNotFound. Records of types idx cannot name (unnamed structs) are
// skipped, since no later load could locate them. Classes and items are
// sorted.
func Capture(recs []apis.Record, idx apis.TypeIndex) (Snapshot, error) {
	byName := make(map[string]map[string]apis.Entry)
	identity := make(map[string]map[string]bool)
	for _, r := range recs {
		if r.Key.IsIdentity() {
			if _, err := idx.NameOf(r.Key.Type); err != nil {
				continue
			}
		}
		sels, ok := byName[r.Key.Name]
		if !ok {
			sels = make(map[string]apis.Entry)
			byName[r.Key.Name] = sels
			identity[r.Key.Name] = make(map[string]bool)
		}
		if _, seen := sels[r.Selector]; seen && !r.Key.IsIdentity() && identity[r.Key.Name][r.Selector] {
			continue
		}
		sels[r.Selector] = r.Entry
		if r.Key.IsIdentity() {
			identity[r.Key.Name][r.Selector] = true
		}
	}

	var s Snapshot
	for name, sels := range byName {
		c := Class{TypeName: name, Entries: make([]Item, 0, len(sels))}
		for sel, e := range sels {
			p, err := payloadOf(e, idx)
			if err != nil {
				return Snapshot{}, fmt.Errorf("%s '%s': %w", name, sel, err)
			}
			c.Entries = append(c.Entries, Item{Selector: sel, Payload: p})
		}
		slices.SortFunc(c.Entries, func(a, b Item) int { return strings.Compare(a.Selector, b.Selector) })
		s.Classes = append(s.Classes, c)
	}
	slices.SortFunc(s.Classes, func(a, b Class) int { return strings.Compare(a.TypeName, b.TypeName) })
	return s, nil
}

func payloadOf(e apis.Entry, idx apis.TypeIndex) (apis.Entry, error) {
	switch v := e.(type) {
	case apis.Resolved:
		loc, err := LocatorOf(v.Op, idx)
		if err != nil {
			return nil, err
		}
		return apis.Deferred{Locator: loc}, nil
	case apis.Deferred, apis.Opaque:
		return v, nil
	case apis.NotFound:
		return apis.Opaque{Kind: KindNotFound}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayload, e)
	}
}

// LocatorOf builds the persistable locator of op. Parameter types that have
// no descriptor (unnamed structs, non-empty unnamed interfaces) are written
// in Go syntax and can only be bound by comparison, see Binder.
func LocatorOf(op apis.Operation, idx apis.TypeIndex) (apis.Locator, error) {
	params := make([]string, len(op.Params))
	for i, p := range op.Params {
		d, err := describeParam(p, idx)
		if err != nil {
			return apis.Locator{}, fmt.Errorf("describing parameter %d of %s: %w", i, op.Name, err)
		}
		params[i] = d
	}
	return apis.NewLocator(op.Name, params...), nil
}

func describeParam(p reflect.Type, idx apis.TypeIndex) (string, error) {
	d, err := idx.NameOf(p)
	if errors.Is(err, uref.ErrReflectUnsupportedType) {
		return p.String(), nil
	}
	return d, err
}

// BindFunc binds a locator to an operation of t.
type BindFunc func(t reflect.Type, loc apis.Locator) (apis.Operation, error)

// Binder returns a BindFunc that locates the parameter types through idx
// and looks the operation up directly through inv, without a scan.
//
// When a parameter type cannot be located, the operations of t with the
// locator's name are compared parameter by parameter against the persisted
// descriptors instead; the locate error is returned if none matches.
func Binder(idx apis.TypeIndex, inv apis.Invoker) BindFunc {
	return func(t reflect.Type, loc apis.Locator) (apis.Operation, error) {
		params := make([]reflect.Type, loc.NumParams())
		for i := range params {
			p, err := idx.TypeOf(loc.Param(i))
			if err != nil {
				if op, ok := matchLocator(t, loc, idx, inv); ok {
					return op, nil
				}
				return apis.Operation{}, err
			}
			params[i] = p
		}
		return inv.Operation(t, loc.Name(), params)
	}
}

func matchLocator(t reflect.Type, loc apis.Locator, idx apis.TypeIndex, inv apis.Invoker) (apis.Operation, bool) {
	for _, op := range inv.Operations(t) {
		if op.Name != loc.Name() || len(op.Params) != loc.NumParams() {
			continue
		}
		same := true
		for i, p := range op.Params {
			if d, err := describeParam(p, idx); err != nil || d != loc.Param(i) {
				same = false
				break
			}
		}
		if same {
			return op, true
		}
	}
	return apis.Operation{}, false
}

// Restore populates c, which should be empty, from s.
//
// With lazy set, types are not located: every class is stored under a
// name-form key and locators stay Deferred. Otherwise every type is located
// through idx and every locator is bound with bind; the first failure aborts
// with a *apis.SnapshotTypeNotFoundError or *apis.ResolutionError and c is
// left partially filled.
//
// Opaque values of kind KindNotFound become NotFound; other opaque values
// are kept as they are.
func Restore(s Snapshot, c apis.Cache, idx apis.TypeIndex, lazy bool, bind BindFunc) error {
	for _, cl := range s.Classes {
		if lazy {
			key := apis.TypeKey{Name: cl.TypeName}
			for _, it := range cl.Entries {
				c.Put(key, it.Selector, entryOf(it.Payload))
			}
			continue
		}

		t, err := idx.TypeOf(cl.TypeName)
		if err != nil {
			return err
		}
		name, err := idx.NameOf(t)
		if err != nil {
			name = cl.TypeName
		}
		key := apis.TypeKey{Type: t, Name: name}
		for _, it := range cl.Entries {
			e := entryOf(it.Payload)
			if d, ok := e.(apis.Deferred); ok {
				op, err := bind(t, d.Locator)
				if err != nil {
					return &apis.ResolutionError{
						TypeName: cl.TypeName,
						Selector: it.Selector,
						Payload:  d.Locator.String(),
						Err:      err,
					}
				}
				e = apis.Resolved{Op: op}
			}
			c.Put(key, it.Selector, e)
		}
	}
	return nil
}

func entryOf(p apis.Entry) apis.Entry {
	if o, ok := p.(apis.Opaque); ok && o.Kind == KindNotFound {
		return apis.NotFound{}
	}
	return p
}
