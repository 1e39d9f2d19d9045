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

package dispatch_test

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/config"
	"dirpx.dev/perform/dispatch"
	"dirpx.dev/perform/invoke"
	"dirpx.dev/perform/registry"
)

var errIllegalAccess = errors.New("illegal access")

type A struct{}

func (*A) ToString() string          { return "an A" }
func (*A) OnlyInA() string           { return "only in A" }
func (*A) ThrowIllegalAccess() error { return errIllegalAccess }

type B struct{ A }

func (*B) ToString() string { return "a B" }

type C struct{ A }

func (*C) ToString() string  { return "a C" }
func (*C) OnlyInC() string   { return "only in C" }
func (*C) InCAndE() string   { return "C: in C (& E)" }
func (*C) Plus(a, b int) int { return a + b }

type D struct{ C }

func (*D) ToString() string { return "a D" }

type E struct{ C }

func (*E) ToString() string { return "an E" }
func (*E) InCAndE() string  { return "E: in C (& E)" }

// Foo is a named parameter type of VariousTypes.
type Foo struct {
	Text  string
	Value int
}

func (f Foo) String() string { return fmt.Sprintf("Foo{text='%s', value=%d}", f.Text, f.Value) }

type VariousTypes struct{}

func (*VariousTypes) ByteToString(v int8) string   { return "byte: " + strconv.Itoa(int(v)) }
func (*VariousTypes) ShortToString(v int16) string { return "short: " + strconv.Itoa(int(v)) }
func (*VariousTypes) IntToString(v int) string     { return "int: " + strconv.Itoa(v) }
func (*VariousTypes) LongToString(v int64) string  { return "long: " + strconv.FormatInt(v, 10) }
func (*VariousTypes) FloatToString(v float32) string {
	return "float: " + strconv.FormatFloat(float64(v), 'f', -1, 32)
}
func (*VariousTypes) DoubleToString(v float64) string {
	return "double: " + strconv.FormatFloat(v, 'f', -1, 64)
}
func (*VariousTypes) CharToString(v rune) string    { return "char: " + string(v) }
func (*VariousTypes) BooleanToString(v bool) string { return "boolean: " + strconv.FormatBool(v) }
func (*VariousTypes) LongArrayToString(v []int64) string {
	var sb strings.Builder
	for _, x := range v {
		fmt.Fprintf(&sb, "%d\n", x)
	}
	return sb.String()
}
func (*VariousTypes) LongArrayArrayToString(v [][]int64) string {
	var sb strings.Builder
	for _, row := range v {
		for _, x := range row {
			fmt.Fprintf(&sb, "%d ", x)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
func (*VariousTypes) FooArrayToString(v []Foo) string {
	var sb strings.Builder
	for _, f := range v {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Mapper takes parameters of func and unnamed struct types.
type Mapper struct{}

func (*Mapper) Apply(f func(int) int, xs ...int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

func (*Mapper) Clamp(r struct{ Lo, Hi int }, v int) int { return min(max(v, r.Lo), r.Hi) }

// sampleNames are the names fixture types are persisted under.
var sampleNames = map[reflect.Type]string{
	reflect.TypeOf(A{}):            "sample.A",
	reflect.TypeOf(B{}):            "sample.B",
	reflect.TypeOf(C{}):            "sample.C",
	reflect.TypeOf(D{}):            "sample.D",
	reflect.TypeOf(E{}):            "sample.E",
	reflect.TypeOf(Mapper{}):       "sample.Mapper",
	reflect.TypeOf(Foo{}):          "typesample.Foo",
	reflect.TypeOf(VariousTypes{}): "typesample.VariousTypes",
}

// countingInvoker counts operation scans.
type countingInvoker struct {
	apis.Invoker
	scans int
}

func (c *countingInvoker) Operations(t reflect.Type) []apis.Operation {
	c.scans++
	return c.Invoker.Operations(t)
}

// cachelessBuilder stops building caches after the first after calls.
type cachelessBuilder struct {
	apis.Builder
	after int
	calls int
}

func (b *cachelessBuilder) BuildCache(cfg apis.Config) apis.Cache {
	b.calls++
	if b.calls > b.after {
		return nil
	}
	return b.Builder.BuildCache(cfg)
}

// newDispatcher builds a Dispatcher whose registry knows the fixture types,
// the way a fresh process would set itself up before loading a snapshot.
func newDispatcher(t testing.TB, opts ...dispatch.Option) *dispatch.Dispatcher {
	t.Helper()
	reg := registry.New(config.DefaultConfig())
	for ty, name := range sampleNames {
		require.NoError(t, reg.Register(ty, name))
	}
	all := append([]dispatch.Option{dispatch.WithRegistry(reg), dispatch.WithLogger(zap.NewNop())}, opts...)
	d, err := dispatch.New(all...)
	require.NoError(t, err)
	return d
}

func memoized(cfg ...config.Option) dispatch.Option {
	return dispatch.WithConfig(config.NewConfig(append([]config.Option{config.WithMemoize(true)}, cfg...)...))
}

func countingOption() (*countingInvoker, dispatch.Option) {
	inv := &countingInvoker{Invoker: invoke.New()}
	return inv, dispatch.WithInvoker(inv)
}

func perform(t testing.TB, d *dispatch.Dispatcher, receiver any, selector string, args ...any) any {
	t.Helper()
	out, err := d.Perform(receiver, selector, args...)
	require.NoError(t, err, "perform %T %s", receiver, selector)
	return out
}

func requireDoesNotUnderstand(t testing.TB, d *dispatch.Dispatcher, receiver any, selector string) *apis.DoesNotUnderstandError {
	t.Helper()
	_, err := d.Perform(receiver, selector)
	var dnu *apis.DoesNotUnderstandError
	require.True(t, errors.As(err, &dnu), "perform %T %s: %v", receiver, selector, err)
	return dnu
}

// runSample exercises A..E over the sample selectors.
func runSample(t testing.TB, d *dispatch.Dispatcher) {
	t.Helper()
	a, b, c, dd, e := &A{}, &B{}, &C{}, &D{}, &E{}

	for recv, want := range map[any]string{a: "an A", b: "a B", c: "a C", dd: "a D", e: "an E"} {
		require.Equal(t, want, perform(t, d, recv, "toString"))
	}
	for _, recv := range []any{a, b, c, dd, e} {
		require.Equal(t, "only in A", perform(t, d, recv, "onlyInA"))
	}

	requireDoesNotUnderstand(t, d, a, "onlyInC")
	requireDoesNotUnderstand(t, d, b, "onlyInC")
	for _, recv := range []any{c, dd, e} {
		require.Equal(t, "only in C", perform(t, d, recv, "onlyInC"))
	}

	requireDoesNotUnderstand(t, d, a, "inCAndE")
	requireDoesNotUnderstand(t, d, b, "inCAndE")
	require.Equal(t, "C: in C (& E)", perform(t, d, c, "inCAndE"))
	require.Equal(t, "C: in C (& E)", perform(t, d, dd, "inCAndE"))
	require.Equal(t, "E: in C (& E)", perform(t, d, e, "inCAndE"))

	require.Equal(t, 3, perform(t, d, c, "+", 1, 2))

	dnu := requireDoesNotUnderstand(t, d, a, "foo")
	require.Equal(t, "*sample.A does not understand 'foo'", dnu.Error())
}

// runVariousTypes exercises parameters of primitive, slice and named types.
func runVariousTypes(t testing.TB, d *dispatch.Dispatcher) {
	t.Helper()
	v := &VariousTypes{}

	require.Equal(t, "byte: 123", perform(t, d, v, "byteToString", int8(123)))
	require.Equal(t, "short: 1234", perform(t, d, v, "shortToString", int16(1234)))
	require.Equal(t, "int: 12345", perform(t, d, v, "intToString", 12345))
	require.Equal(t, "long: 123456", perform(t, d, v, "longToString", int64(123456)))
	require.Equal(t, "float: 123456.7", perform(t, d, v, "floatToString", float32(123456.7)))
	require.Equal(t, "double: 123456.78", perform(t, d, v, "doubleToString", 123456.78))
	require.Equal(t, "char: Q", perform(t, d, v, "charToString", 'Q'))
	require.Equal(t, "boolean: true", perform(t, d, v, "booleanToString", true))
	require.Equal(t, "1\n4\n7\n", perform(t, d, v, "longArrayToString", []int64{1, 4, 7}))
	require.Equal(t, "1 4 7 \n1 2 6 \n4 9 8 \n",
		perform(t, d, v, "longArrayArrayToString", [][]int64{{1, 4, 7}, {1, 2, 6}, {4, 9, 8}}))
	require.Equal(t, "Foo{text='a', value=1}\nFoo{text='b', value=12}\nFoo{text='c', value=123}\n",
		perform(t, d, v, "fooArrayToString", []Foo{{"a", 1}, {"b", 12}, {"c", 123}}))
}
