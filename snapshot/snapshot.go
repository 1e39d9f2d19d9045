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

// Package snapshot converts a method cache to and from its persisted binary
// form.
//
// Stream layout (big-endian):
//
//	classCount int32
//	classCount x {
//	    typeName      string
//	    selectorCount int32
//	    selectorCount x {
//	        selector string
//	        tag      byte   'L' locator | 'O' opaque
//	        'L': methodName string, paramCount int32, paramCount x string
//	        'O': kind string, length int32, length x byte
//	    }
//	}
//
// A string is an int32 byte length followed by UTF-8 bytes. The stream may
// be wrapped whole in a zstd or lz4 frame; the compression is configured,
// not detected.
package snapshot

import "dirpx.dev/perform/apis"

// KindNotFound is the opaque kind memoized negative results are stored as.
const KindNotFound = "not-found"

const (
	tagLocator byte = 'L'
	tagOpaque  byte = 'O'
)

// Snapshot is the decoded form of a persisted cache.
type Snapshot struct {
	Classes []Class
}

// Class holds the persisted entries of one type.
type Class struct {
	TypeName string
	Entries  []Item
}

// Item is one persisted (selector, payload) pair. Payload is either
// apis.Deferred (locator case) or apis.Opaque.
type Item struct {
	Selector string
	Payload  apis.Entry
}

// Len returns the number of items across all classes.
func (s Snapshot) Len() int {
	n := 0
	for _, c := range s.Classes {
		n += len(c.Entries)
	}
	return n
}
