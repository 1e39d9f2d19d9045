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

package invoke

import (
	"fmt"
	"reflect"

	"dirpx.dev/perform/apis"
)

// New constructs the reflect-backed apis.Invoker.
func New() apis.Invoker {
	return invoker{}
}

// invoker is stateless and safe for concurrent use.
type invoker struct{}

// Ensure invoker implements apis.Invoker.
var _ apis.Invoker = invoker{}

var errorType = reflect.TypeFor[error]()

// Operations returns the exported methods of t in the order reflect reports
// them (lexicographic by name).
func (invoker) Operations(t reflect.Type) []apis.Operation {
	if t == nil {
		return nil
	}
	ops := make([]apis.Operation, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		ops = append(ops, operationOf(t, t.Method(i)))
	}
	return ops
}

// Operation looks up the method name of t directly and checks that its
// parameter types are exactly params.
func (invoker) Operation(t reflect.Type, name string, params []reflect.Type) (apis.Operation, error) {
	if t == nil {
		return apis.Operation{}, fmt.Errorf("%w: nil type", apis.ErrInvalidArgument)
	}
	m, ok := t.MethodByName(name)
	if !ok {
		return apis.Operation{}, fmt.Errorf("%w: %s has no method %s", apis.ErrOperationNotFound, t, name)
	}
	op := operationOf(t, m)
	if len(op.Params) != len(params) {
		return apis.Operation{}, fmt.Errorf("%w: %s.%s takes %d parameters, not %d",
			apis.ErrOperationNotFound, t, name, len(op.Params), len(params))
	}
	for i, p := range params {
		if op.Params[i] != p {
			return apis.Operation{}, fmt.Errorf("%w: %s.%s parameter %d is %s, not %s",
				apis.ErrOperationNotFound, t, name, i, op.Params[i], p)
		}
	}
	return op, nil
}

// operationOf converts a reflect.Method of t into an Operation. Method types
// of concrete types carry the receiver as the first input; interface method
// types do not.
func operationOf(t reflect.Type, m reflect.Method) apis.Operation {
	first := 1
	if t.Kind() == reflect.Interface {
		first = 0
	}
	params := make([]reflect.Type, 0, m.Type.NumIn()-first)
	for i := first; i < m.Type.NumIn(); i++ {
		params = append(params, m.Type.In(i))
	}
	return apis.Operation{Owner: t, Name: m.Name, Params: params, Index: m.Index}
}

// Invoke calls op on receiver.
//
// A nil argument stands for the zero value of a nilable parameter. A
// trailing non-nil error result and a panic inside the method are both
// reported as ErrTargetFailed. Results: none yields nil, one yields the
// value, several yield a []any; a trailing error result is not counted.
func (invoker) Invoke(op apis.Operation, receiver any, args []any) (out any, err error) {
	if op.IsZero() {
		return nil, fmt.Errorf("%w: zero operation", apis.ErrInvalidArgument)
	}
	rv := reflect.ValueOf(receiver)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: nil receiver for %s", apis.ErrNotPermitted, op.Name)
	}

	var fn reflect.Value
	if op.Owner.Kind() == reflect.Interface {
		if !rv.Type().Implements(op.Owner) {
			return nil, fmt.Errorf("%w: %s does not implement %s", apis.ErrNotPermitted, rv.Type(), op.Owner)
		}
		fn = rv.MethodByName(op.Name)
	} else {
		if rv.Type() != op.Owner {
			return nil, fmt.Errorf("%w: receiver is %s, operation belongs to %s", apis.ErrNotPermitted, rv.Type(), op.Owner)
		}
		fn = rv.Method(op.Index)
	}

	in, err := arguments(fn.Type(), op.Name, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %s panicked: %v", apis.ErrTargetFailed, op.Name, r)
		}
	}()
	return results(fn.Call(in))
}

// arguments checks arity and assignability and converts args to values.
func arguments(ft reflect.Type, name string, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("%w: %s takes at least %d arguments, got %d", apis.ErrNotPermitted, name, n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", apis.ErrNotPermitted, name, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			pt = ft.In(n - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		if a == nil {
			if !nilable(pt) {
				return nil, fmt.Errorf("%w: %s argument %d: nil is not a %s", apis.ErrNotPermitted, name, i, pt)
			}
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("%w: %s argument %d: %s is not assignable to %s", apis.ErrNotPermitted, name, i, av.Type(), pt)
		}
		in[i] = av
	}
	return in, nil
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func results(outs []reflect.Value) (any, error) {
	if n := len(outs); n > 0 && outs[n-1].Type() == errorType {
		if e := outs[n-1]; !e.IsNil() {
			return nil, fmt.Errorf("%w: %w", apis.ErrTargetFailed, e.Interface().(error))
		}
		outs = outs[:n-1]
	}
	switch len(outs) {
	case 0:
		return nil, nil
	case 1:
		return outs[0].Interface(), nil
	default:
		vals := make([]any, len(outs))
		for i, o := range outs {
			vals[i] = o.Interface()
		}
		return vals, nil
	}
}
