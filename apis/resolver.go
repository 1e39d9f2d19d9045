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

import (
	"reflect"
	"time"
)

// Resolver performs the expensive, uncached method lookup.
type Resolver interface {
	// Resolve finds the operation of t matching selector. It fails with an
	// *OperationNotFoundError when no operation matches.
	Resolve(t reflect.Type, selector string) (Operation, error)

	// SetDelay sets the artificial delay injected ahead of each scan.
	// Negative values are rejected with ErrInvalidArgument.
	SetDelay(d time.Duration) error

	// Delay returns the current artificial delay.
	Delay() time.Duration
}
