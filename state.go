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

package perform

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/dispatch"
)

var (
	// st holds the current state atomically.
	st atomic.Pointer[state]
	// buildMu serializes publishing of new states.
	buildMu sync.Mutex
)

// state is the published, immutable snapshot of the package-level setup.
type state struct {
	cfg apis.Config
	bld apis.Builder
	log *zap.Logger
	d   *dispatch.Dispatcher
}

// build constructs a dispatcher for s whose registry migrates entries of prev.
func (s *state) build(prev apis.Registry) (*dispatch.Dispatcher, error) {
	return dispatch.New(
		dispatch.WithConfig(s.cfg),
		dispatch.WithBuilder(s.bld),
		dispatch.WithLogger(s.log),
		dispatch.WithRegistry(s.bld.BuildRegistry(s.cfg, prev)),
	)
}
