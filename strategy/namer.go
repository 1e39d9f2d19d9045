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

// NewNamerStrategy creates an apis.Strategy that uses apis.Namer.
func NewNamerStrategy() apis.Strategy {
	return &namerStrategy{}
}

// namerStrategy is a zero-cost fast path: if t (or *t) implements
// apis.Namer, return EntityName() of a zero value and stop the chain.
type namerStrategy struct{}

// Ensure namerStrategy implements apis.Strategy.
var _ apis.Strategy = (*namerStrategy)(nil)

var namerType = reflect.TypeFor[apis.Namer]()

// TryNameType checks if t implements apis.Namer and returns its EntityName().
// The name is taken from a pointer to a zero value so that both value and
// pointer receivers work.
func (*namerStrategy) TryNameType(t reflect.Type) (string, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return "", false
	}
	if !reflect.PointerTo(t).Implements(namerType) {
		return "", false
	}
	n := reflect.New(t).Interface().(apis.Namer).EntityName()
	if n == "" {
		return "", false
	}
	return n, true
}
