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

package snapshot

import (
	"bytes"
	"io"

	"go.uber.org/multierr"

	"dirpx.dev/perform/apis"
	"dirpx.dev/perform/store"
)

// Write encodes s to w with comp.
func Write(w io.Writer, s Snapshot, comp apis.Compression) (err error) {
	cw, err := compressor(w, comp)
	if err != nil {
		return err
	}
	if err := NewEncoder(cw).Encode(s); err != nil {
		return multierr.Append(err, cw.Close())
	}
	return cw.Close()
}

// Read decodes one snapshot from r with comp. Malformed input, including a
// broken compression frame, is reported as apis.ErrCorruptSnapshot.
func Read(r io.Reader, comp apis.Compression) (Snapshot, error) {
	dr, done, err := decompressor(r, comp)
	if err != nil {
		return Snapshot{}, err
	}
	defer done()
	return NewDecoder(dr).Decode()
}

// Marshal encodes s into a byte slice.
func Marshal(s Snapshot, comp apis.Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s, comp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a byte slice produced by Marshal.
func Unmarshal(data []byte, comp apis.Compression) (Snapshot, error) {
	return Read(bytes.NewReader(data), comp)
}

// WriteFile atomically replaces path with the encoding of s.
func WriteFile(path string, s Snapshot, comp apis.Compression) error {
	return store.WriteFileAtomic(path, func(w io.Writer) error {
		return Write(w, s, comp)
	})
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string, comp apis.Compression) (Snapshot, error) {
	var s Snapshot
	err := store.ReadFileShared(path, func(r io.Reader) error {
		var err error
		s, err = Read(r, comp)
		return err
	})
	return s, err
}
