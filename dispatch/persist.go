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

package dispatch

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/snapshot"
	"dirpx.dev/perform/store"
)

// current returns the active cache or apis.ErrPrerequisiteNotMet.
func (d *Dispatcher) current(op string) (apis.Cache, error) {
	m := d.memo.Load()
	if m == nil {
		return nil, fmt.Errorf("%w: %s requires memoization to be enabled", apis.ErrPrerequisiteNotMet, op)
	}
	return m.cache, nil
}

func (d *Dispatcher) capture(op string) (snapshot.Snapshot, error) {
	c, err := d.current(op)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Capture(c.Records(), d.idx)
}

// Save writes the cache to path, atomically replacing it.
func (d *Dispatcher) Save(path string) error {
	s, err := d.capture("save")
	if err != nil {
		return err
	}
	if err := snapshot.WriteFile(path, s, d.cfg.Compression); err != nil {
		return err
	}
	d.log.Info("saved snapshot",
		zap.String("path", path),
		zap.Int("entries", s.Len()),
		zap.Stringer("compression", d.cfg.Compression))
	return nil
}

// SaveTo writes the cache to st under name.
func (d *Dispatcher) SaveTo(ctx context.Context, st store.Store, name string) error {
	s, err := d.capture("save")
	if err != nil {
		return err
	}
	data, err := snapshot.Marshal(s, d.cfg.Compression)
	if err != nil {
		return err
	}
	if err := st.Put(ctx, name, data); err != nil {
		return err
	}
	d.log.Info("saved snapshot",
		zap.String("name", name),
		zap.Int("entries", s.Len()),
		zap.Stringer("compression", d.cfg.Compression))
	return nil
}

// Load replaces the cache with the snapshot at path, binding every entry
// eagerly, and enables memoization. On failure the current cache is kept.
func (d *Dispatcher) Load(path string) error {
	return d.loadFile(path, false)
}

// LoadLazy replaces the cache with the snapshot at path without locating
// any type; entries are bound on first use. It enables memoization.
func (d *Dispatcher) LoadLazy(path string) error {
	return d.loadFile(path, true)
}

func (d *Dispatcher) loadFile(path string, lazy bool) error {
	s, err := snapshot.ReadFile(path, d.cfg.Compression)
	if err != nil {
		return err
	}
	if err := d.install(s, lazy); err != nil {
		return err
	}
	d.log.Info("loaded snapshot", zap.String("path", path), zap.Int("entries", s.Len()), zap.Bool("lazy", lazy))
	return nil
}

// LoadFrom replaces the cache with the snapshot stored in st under name.
func (d *Dispatcher) LoadFrom(ctx context.Context, st store.Store, name string, lazy bool) error {
	data, err := st.Get(ctx, name)
	if err != nil {
		return err
	}
	s, err := snapshot.Unmarshal(data, d.cfg.Compression)
	if err != nil {
		return err
	}
	if err := d.install(s, lazy); err != nil {
		return err
	}
	d.log.Info("loaded snapshot", zap.String("name", name), zap.Int("entries", s.Len()), zap.Bool("lazy", lazy))
	return nil
}

// install restores s into a fresh cache and publishes it.
func (d *Dispatcher) install(s snapshot.Snapshot, lazy bool) error {
	c, err := d.newCache()
	if err != nil {
		return err
	}
	if err := snapshot.Restore(s, c, d.idx, lazy, d.bind); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.memo.Store(&memo{cache: c})
	return nil
}

// Dump writes one "typeName<TAB>selector" line per cached pair, sorted.
func (d *Dispatcher) Dump(w io.Writer) error {
	c, err := d.current("dump")
	if err != nil {
		return err
	}
	return snapshot.Dump(w, c.Records())
}

// DumpFile writes the Dump listing to path, atomically replacing it.
func (d *Dispatcher) DumpFile(path string) error {
	c, err := d.current("dump")
	if err != nil {
		return err
	}
	return store.WriteFileAtomic(path, func(w io.Writer) error {
		return snapshot.Dump(w, c.Records())
	})
}
