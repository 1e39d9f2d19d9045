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

package reflect

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"dirpx.dev/perform/config"
)

var (
	// ErrReflectUnsupportedType is returned for types that have no descriptor
	// (unnamed structs, non-empty unnamed interfaces).
	ErrReflectUnsupportedType = errors.New("reflect: type has no descriptor")
	// ErrReflectUnknownType is returned when a descriptor names a type that
	// cannot be located.
	ErrReflectUnknownType = errors.New("reflect: unknown type")
	// ErrReflectBadDescriptor is returned for malformed descriptors.
	ErrReflectBadDescriptor = errors.New("reflect: malformed type descriptor")
	// ErrReflectTooDeep is returned when nesting exceeds the configured limit.
	ErrReflectTooDeep = errors.New("reflect: type nesting too deep")
)

// NameFunc names a named, non-builtin type.
type NameFunc func(t reflect.Type) (string, bool)

// LookupFunc locates a named, non-builtin type by name.
type LookupFunc func(name string) (reflect.Type, bool)

// Describe renders t as a descriptor using Go type syntax. Builtin types use
// their own name, other named types are named by name, and composite types
// (pointer, slice, array, chan, map, func) are composed from their element
// descriptors. maxDepth bounds composite nesting; <= 0 selects the default.
func Describe(t reflect.Type, name NameFunc, maxDepth int) (string, error) {
	if t == nil {
		return "", ErrReflectNilType
	}
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxUnwrap
	}
	var sb strings.Builder
	if err := describe(&sb, t, name, maxDepth); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func describe(sb *strings.Builder, t reflect.Type, name NameFunc, depth int) error {
	if t.Name() != "" {
		if isBuiltin(t) {
			sb.WriteString(t.Name())
			return nil
		}
		n, ok := name(t)
		if !ok || n == "" {
			return fmt.Errorf("%w: %s", ErrReflectTypeNotNamed, t)
		}
		sb.WriteString(n)
		return nil
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		sb.WriteString("interface {}")
		return nil
	}
	if depth == 0 {
		return fmt.Errorf("%w: %s", ErrReflectTooDeep, t)
	}

	switch t.Kind() {
	case reflect.Ptr:
		sb.WriteByte('*')
	case reflect.Slice:
		sb.WriteString("[]")
	case reflect.Array:
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(t.Len()))
		sb.WriteByte(']')
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			sb.WriteString("<-chan ")
		case reflect.SendDir:
			sb.WriteString("chan<- ")
		default:
			sb.WriteString("chan ")
		}
	case reflect.Map:
		sb.WriteString("map[")
		if err := describe(sb, t.Key(), name, depth-1); err != nil {
			return err
		}
		sb.WriteByte(']')
	case reflect.Func:
		return describeFunc(sb, t, name, depth-1)
	default:
		return fmt.Errorf("%w: %s", ErrReflectUnsupportedType, t)
	}
	return describe(sb, t.Elem(), name, depth-1)
}

// describeFunc writes t the way reflect prints func types:
// "func(int, ...string) (int, error)".
func describeFunc(sb *strings.Builder, t reflect.Type, name NameFunc, depth int) error {
	sb.WriteString("func(")
	for i := 0; i < t.NumIn(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			sb.WriteString("...")
			in = in.Elem()
		}
		if err := describe(sb, in, name, depth); err != nil {
			return err
		}
	}
	sb.WriteByte(')')

	switch t.NumOut() {
	case 0:
		return nil
	case 1:
		sb.WriteByte(' ')
		return describe(sb, t.Out(0), name, depth)
	}
	sb.WriteString(" (")
	for i := 0; i < t.NumOut(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := describe(sb, t.Out(i), name, depth); err != nil {
			return err
		}
	}
	sb.WriteByte(')')
	return nil
}

// Parse locates the type a descriptor produced by Describe refers to.
// Builtin names are resolved through the primitive table; other named types
// through lookup.
func Parse(desc string, lookup LookupFunc, maxDepth int) (reflect.Type, error) {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxUnwrap
	}
	return parse(desc, lookup, maxDepth)
}

func parse(desc string, lookup LookupFunc, depth int) (reflect.Type, error) {
	if desc == "" {
		return nil, ErrReflectBadDescriptor
	}
	if t, ok := Primitive(desc); ok {
		return t, nil
	}
	if strings.HasPrefix(desc, "func(") {
		if depth == 0 {
			return nil, fmt.Errorf("%w: %s", ErrReflectTooDeep, desc)
		}
		return parseFunc(desc, lookup, depth-1)
	}

	compose, rest, ok, err := splitComposite(desc, lookup, depth)
	if err != nil {
		return nil, err
	}
	if !ok {
		if t, found := lookup(desc); found {
			return t, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrReflectUnknownType, desc)
	}
	if depth == 0 {
		return nil, fmt.Errorf("%w: %s", ErrReflectTooDeep, desc)
	}
	elem, err := parse(rest, lookup, depth-1)
	if err != nil {
		return nil, err
	}
	return compose(elem)
}

// splitComposite recognizes a composite prefix of desc and returns the
// constructor for it plus the element descriptor. ok is false when desc is
// not a composite.
func splitComposite(desc string, lookup LookupFunc, depth int) (func(reflect.Type) (reflect.Type, error), string, bool, error) {
	switch {
	case strings.HasPrefix(desc, "*"):
		return wrap(reflect.PointerTo), desc[1:], true, nil

	case strings.HasPrefix(desc, "[]"):
		return wrap(reflect.SliceOf), desc[2:], true, nil

	case strings.HasPrefix(desc, "["):
		end := strings.IndexByte(desc, ']')
		if end < 0 {
			return nil, "", false, fmt.Errorf("%w: %s", ErrReflectBadDescriptor, desc)
		}
		n, err := strconv.Atoi(desc[1:end])
		if err != nil || n < 0 {
			return nil, "", false, fmt.Errorf("%w: %s", ErrReflectBadDescriptor, desc)
		}
		return wrap(func(t reflect.Type) reflect.Type { return reflect.ArrayOf(n, t) }), desc[end+1:], true, nil

	case strings.HasPrefix(desc, "<-chan "):
		return chanOf(reflect.RecvDir), desc[len("<-chan "):], true, nil

	case strings.HasPrefix(desc, "chan<- "):
		return chanOf(reflect.SendDir), desc[len("chan<- "):], true, nil

	case strings.HasPrefix(desc, "chan "):
		return chanOf(reflect.BothDir), desc[len("chan "):], true, nil

	case strings.HasPrefix(desc, "map["):
		end := matchClose(desc, len("map"))
		if end < 0 {
			return nil, "", false, fmt.Errorf("%w: %s", ErrReflectBadDescriptor, desc)
		}
		if depth == 0 {
			return nil, "", false, fmt.Errorf("%w: %s", ErrReflectTooDeep, desc)
		}
		key, err := parse(desc[len("map["):end], lookup, depth-1)
		if err != nil {
			return nil, "", false, err
		}
		if !key.Comparable() {
			return nil, "", false, fmt.Errorf("%w: invalid map key in %s", ErrReflectBadDescriptor, desc)
		}
		return wrap(func(t reflect.Type) reflect.Type { return reflect.MapOf(key, t) }), desc[end+1:], true, nil
	}
	return nil, "", false, nil
}

func wrap(f func(reflect.Type) reflect.Type) func(reflect.Type) (reflect.Type, error) {
	return func(t reflect.Type) (reflect.Type, error) { return f(t), nil }
}

func chanOf(dir reflect.ChanDir) func(reflect.Type) (reflect.Type, error) {
	return wrap(func(t reflect.Type) reflect.Type { return reflect.ChanOf(dir, t) })
}

// parseFunc rebuilds a func type from a descriptor written by describeFunc.
func parseFunc(desc string, lookup LookupFunc, depth int) (reflect.Type, error) {
	end := matchClose(desc, len("func"))
	if end < 0 {
		return nil, fmt.Errorf("%w: %s", ErrReflectBadDescriptor, desc)
	}

	params := splitList(desc[len("func("):end])
	in := make([]reflect.Type, 0, len(params))
	variadic := false
	for i, p := range params {
		if rest, ok := strings.CutPrefix(p, "..."); ok {
			if i != len(params)-1 {
				return nil, fmt.Errorf("%w: %s", ErrReflectBadDescriptor, desc)
			}
			variadic, p = true, rest
		}
		t, err := parse(p, lookup, depth)
		if err != nil {
			return nil, err
		}
		if variadic {
			t = reflect.SliceOf(t)
		}
		in = append(in, t)
	}

	var results []string
	switch rest := strings.TrimSpace(desc[end+1:]); {
	case rest == "":
	case strings.HasPrefix(rest, "("):
		if matchClose(rest, 0) != len(rest)-1 {
			return nil, fmt.Errorf("%w: %s", ErrReflectBadDescriptor, desc)
		}
		results = splitList(rest[1 : len(rest)-1])
	default:
		results = []string{rest}
	}
	out := make([]reflect.Type, 0, len(results))
	for _, r := range results {
		t, err := parse(r, lookup, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return reflect.FuncOf(in, out, variadic), nil
}

// matchClose returns the index of the bracket closing the '[' or '(' at
// open, or -1.
func matchClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitList splits a comma-separated descriptor list at nesting depth zero.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
