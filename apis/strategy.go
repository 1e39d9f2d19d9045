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

// Strategy is a pluggable naming step for named types. A Naming chain runs
// multiple strategies in order (e.g., Namer -> Registry -> Reflect).
type Strategy interface {
	// TryNameType attempts to name the named type t.
	// It returns (name, true) if handled; otherwise ("", false) to fall through.
	TryNameType(t reflect.Type) (name string, handled bool)
}

// Naming coordinates strategies to produce the stable name of a named type.
type Naming interface {
	// NameType returns a stable name for t, or "" if none can be determined.
	NameType(t reflect.Type) string
}

// Namer lets a type pin the name it is persisted under.
// EntityName describes the kind of entity, so it must not depend on
// instance state.
type Namer interface {
	EntityName() string
}
