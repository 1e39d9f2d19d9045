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
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for programmer errors such as a negative delay.
	ErrInvalidArgument = errors.New("perform: invalid argument")
	// ErrPrerequisiteNotMet is returned when an operation needs state that is absent,
	// e.g. saving while memoization is disabled.
	ErrPrerequisiteNotMet = errors.New("perform: prerequisite not met")
	// ErrOperationNotFound is matched by *OperationNotFoundError.
	ErrOperationNotFound = errors.New("perform: no such operation")
	// ErrNotPermitted indicates the caller may not invoke the operation as requested
	// (wrong receiver, wrong arity, unassignable argument).
	ErrNotPermitted = errors.New("perform: caller not permitted")
	// ErrTargetFailed indicates the operation ran and failed (returned an error or panicked).
	ErrTargetFailed = errors.New("perform: operation failed")
	// ErrCorruptSnapshot indicates a snapshot stream that cannot be decoded.
	ErrCorruptSnapshot = errors.New("perform: corrupt snapshot")
)

// OperationNotFoundError is the Resolver's negative result.
type OperationNotFoundError struct {
	Selector string
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("perform: no operation for selector '%s'", e.Selector)
}

// Is makes errors.Is(err, ErrOperationNotFound) hold.
func (e *OperationNotFoundError) Is(target error) bool {
	return target == ErrOperationNotFound
}

// DoesNotUnderstandError reports that a type has no operation for a selector.
type DoesNotUnderstandError struct {
	TypeName string
	Selector string
}

func (e *DoesNotUnderstandError) Error() string {
	return fmt.Sprintf("%s does not understand '%s'", e.TypeName, e.Selector)
}

// InvocationError wraps a failure raised while calling a resolved operation.
type InvocationError struct {
	TypeName string
	Selector string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("perform: invoking '%s' on %s: %v", e.Selector, e.TypeName, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ResolutionError reports a stored payload that cannot be bound to an
// operation of the concrete type. It indicates a stale snapshot and is not
// retried.
type ResolutionError struct {
	TypeName string
	Selector string
	Payload  string
	Err      error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("perform: unexpected value memoized for %s and selector '%s': %s",
			e.TypeName, e.Selector, e.Payload)
	}
	return fmt.Sprintf("perform: cannot bind %s for %s and selector '%s': %v",
		e.Payload, e.TypeName, e.Selector, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SnapshotTypeNotFoundError reports a type named in a snapshot that can no
// longer be located.
type SnapshotTypeNotFoundError struct {
	TypeName string
	Err      error
}

func (e *SnapshotTypeNotFoundError) Error() string {
	return fmt.Sprintf("perform: error when looking for type %s", e.TypeName)
}

func (e *SnapshotTypeNotFoundError) Unwrap() error { return e.Err }
