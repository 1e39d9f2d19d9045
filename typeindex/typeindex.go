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

package typeindex

import (
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/config"
	uref "dirpx.dev/perform/utils/reflect"
)

// New constructs an apis.TypeIndex over reg and naming.
//
// Named types reached by NameOf are registered in reg under the name the
// naming chain produced, so a later TypeOf in the same process finds them.
// Types that must be located by a fresh process have to be registered
// explicitly before the snapshot is loaded.
func New(cfg apis.Config, reg apis.Registry, naming apis.Naming) apis.TypeIndex {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &index{cfg: cfg, reg: reg, naming: naming}
}

// index memoizes descriptors per type; registry and naming are consulted
// only on the first NameOf for a type.
type index struct {
	cfg    apis.Config
	reg    apis.Registry
	naming apis.Naming
	names  sync.Map // map[reflect.Type]string
}

// Ensure index implements apis.TypeIndex.
var _ apis.TypeIndex = (*index)(nil)

// NameOf returns the descriptor of t.
func (x *index) NameOf(t reflect.Type) (string, error) {
	if t == nil {
		return "", uref.ErrReflectNilType
	}
	if v, ok := x.names.Load(t); ok {
		return v.(string), nil
	}

	var regErr error
	desc, err := uref.Describe(t, func(nt reflect.Type) (string, bool) {
		n := x.naming.NameType(nt)
		if n == "" {
			return "", false
		}
		if err := x.reg.Register(nt, n); err != nil {
			regErr = fmt.Errorf("%w: %s as %q", err, nt, n)
			return "", false
		}
		return n, true
	}, x.cfg.MaxUnwrap)
	if regErr != nil {
		return "", regErr
	}
	if err != nil {
		return "", err
	}

	v, _ := x.names.LoadOrStore(t, desc)
	return v.(string), nil
}

// TypeOf locates the type described by name.
func (x *index) TypeOf(name string) (reflect.Type, error) {
	t, err := uref.Parse(name, x.reg.Type, x.cfg.MaxUnwrap)
	if err != nil {
		return nil, &apis.SnapshotTypeNotFoundError{TypeName: name, Err: err}
	}
	return t, nil
}
