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

package store

import (
	"context"
	"os"
)

// ErrNotFound is returned when a snapshot does not exist.
//
// Implementations should return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store persists encoded snapshots under flat names.
type Store interface {
	// Put writes a snapshot atomically; readers never observe a partial write.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads a whole snapshot.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a snapshot. Missing snapshots are not an error.
	Delete(ctx context.Context, name string) error
}
