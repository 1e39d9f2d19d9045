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

import "reflect"

// primitives maps builtin type names to their runtime types. A registry of
// user types cannot locate these, so descriptors are checked against this
// table first.
var primitives = map[string]reflect.Type{
	"bool":         reflect.TypeFor[bool](),
	"int":          reflect.TypeFor[int](),
	"int8":         reflect.TypeFor[int8](),
	"int16":        reflect.TypeFor[int16](),
	"int32":        reflect.TypeFor[int32](),
	"int64":        reflect.TypeFor[int64](),
	"uint":         reflect.TypeFor[uint](),
	"uint8":        reflect.TypeFor[uint8](),
	"uint16":       reflect.TypeFor[uint16](),
	"uint32":       reflect.TypeFor[uint32](),
	"uint64":       reflect.TypeFor[uint64](),
	"uintptr":      reflect.TypeFor[uintptr](),
	"float32":      reflect.TypeFor[float32](),
	"float64":      reflect.TypeFor[float64](),
	"complex64":    reflect.TypeFor[complex64](),
	"complex128":   reflect.TypeFor[complex128](),
	"string":       reflect.TypeFor[string](),
	"error":        reflect.TypeFor[error](),
	"interface {}": reflect.TypeFor[any](),
	// aliases
	"byte": reflect.TypeFor[byte](),
	"rune": reflect.TypeFor[rune](),
	"any":  reflect.TypeFor[any](),
}

// Primitive returns the builtin type named name.
func Primitive(name string) (reflect.Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

// isBuiltin reports whether t is a named builtin type (no package path).
func isBuiltin(t reflect.Type) bool {
	return t.Name() != "" && t.PkgPath() == ""
}
