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

package strategy

import (
	"reflect"

	"dirpx.dev/perform/apis"
)

// NewReflectStrategy creates an apis.Strategy that names a type by its full
// package path and type name.
func NewReflectStrategy() apis.Strategy {
	return reflectStrategy{}
}

// reflectStrategy is the universal fallback that computes "pkgpath.Type".
// The full package path keeps names unique across packages; generic
// instantiations keep their type arguments.
type reflectStrategy struct{}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// TryNameType computes the qualified name of t.
func (reflectStrategy) TryNameType(t reflect.Type) (string, bool) {
	if t == nil || t.Name() == "" {
		return "", false
	}
	if p := t.PkgPath(); p != "" {
		return p + "." + t.Name(), true
	}
	return t.Name(), true
}
