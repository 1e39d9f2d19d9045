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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"
)

// LocalStore implements Store on a local directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Ensure LocalStore implements Store.
var _ Store = (*LocalStore)(nil)

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Put writes data to name through a temporary file and a rename.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return WriteFileAtomic(p, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// Get reads name under a shared lock.
func (s *LocalStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := ReadFileShared(s.path(name), func(r io.Reader) error {
		var err error
		data, err = io.ReadAll(r)
		return err
	})
	return data, err
}

// Delete removes name under the writers' lock.
func (s *LocalStore) Delete(ctx context.Context, name string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(name)
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	l := flock.New(lockPath(p))
	if err := l.Lock(); err != nil {
		return fmt.Errorf("cannot acquire lock for %s: %w", p, err)
	}
	defer func() { err = multierr.Append(err, l.Unlock()) }()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func lockPath(path string) string {
	return path + ".lock"
}

// WriteFileAtomic writes path by streaming into a temporary file in the same
// directory and renaming it over path. Writers are serialized by an
// exclusive lock on path + ".lock". On failure path is left untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	l := flock.New(lockPath(path))
	if err := l.Lock(); err != nil {
		return fmt.Errorf("cannot acquire lock for %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, l.Unlock()) }()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if err := write(tmp); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReadFileShared opens path and passes it to read while holding a shared
// lock on path + ".lock". A missing file is reported as ErrNotFound.
func ReadFileShared(path string, read func(r io.Reader) error) (err error) {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	l := flock.New(lockPath(path))
	if err := l.RLock(); err != nil {
		return fmt.Errorf("cannot acquire lock for %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, l.Unlock()) }()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return read(f)
}
