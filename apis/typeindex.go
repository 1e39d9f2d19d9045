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

package apis

import "reflect"

// TypeIndex converts between live types and the descriptors persisted in
// snapshots.
type TypeIndex interface {
	// NameOf returns the descriptor of t. Named types reachable from t are
	// remembered so that TypeOf can locate them again.
	NameOf(t reflect.Type) (string, error)
	// TypeOf locates the type described by name. It fails with a
	// *SnapshotTypeNotFoundError when the type cannot be located.
	TypeOf(name string) (reflect.Type, error)
}
