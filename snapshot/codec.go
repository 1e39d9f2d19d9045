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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"unicode/utf8"

	"dirpx.dev/perform/apis"
)

// ErrUnsupportedPayload is returned when encoding an item whose payload is
// neither a locator nor an opaque value.
var ErrUnsupportedPayload = errors.New("perform(snapshot): unsupported payload")

// Encoder writes snapshots in binary format.
type Encoder struct {
	w         *bufio.Writer
	byteOrder binary.ByteOrder
	scratch   [4]byte
}

// NewEncoder creates a new Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), byteOrder: binary.BigEndian}
}

// Encode writes s and flushes.
func (e *Encoder) Encode(s Snapshot) error {
	if err := e.writeCount(len(s.Classes)); err != nil {
		return err
	}
	for _, c := range s.Classes {
		if err := e.writeString(c.TypeName); err != nil {
			return err
		}
		if err := e.writeCount(len(c.Entries)); err != nil {
			return err
		}
		for _, it := range c.Entries {
			if err := e.writeItem(it); err != nil {
				return err
			}
		}
	}
	return e.w.Flush()
}

func (e *Encoder) writeItem(it Item) error {
	if err := e.writeString(it.Selector); err != nil {
		return err
	}
	switch p := it.Payload.(type) {
	case apis.Deferred:
		if err := e.w.WriteByte(tagLocator); err != nil {
			return err
		}
		if err := e.writeString(p.Locator.Name()); err != nil {
			return err
		}
		if err := e.writeCount(p.Locator.NumParams()); err != nil {
			return err
		}
		for i := 0; i < p.Locator.NumParams(); i++ {
			if err := e.writeString(p.Locator.Param(i)); err != nil {
				return err
			}
		}
		return nil
	case apis.Opaque:
		if err := e.w.WriteByte(tagOpaque); err != nil {
			return err
		}
		if err := e.writeString(p.Kind); err != nil {
			return err
		}
		return e.writeBytes(p.Data)
	default:
		return fmt.Errorf("%w: %T for selector '%s'", ErrUnsupportedPayload, it.Payload, it.Selector)
	}
}

func (e *Encoder) writeCount(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: count %d overflows int32", apis.ErrInvalidArgument, n)
	}
	e.byteOrder.PutUint32(e.scratch[:], uint32(n))
	_, err := e.w.Write(e.scratch[:])
	return err
}

func (e *Encoder) writeBytes(b []byte) error {
	if err := e.writeCount(len(b)); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *Encoder) writeString(s string) error {
	if err := e.writeCount(len(s)); err != nil {
		return err
	}
	_, err := e.w.WriteString(s)
	return err
}

// Decoder reads snapshots from binary format.
type Decoder struct {
	r         *bufio.Reader
	byteOrder binary.ByteOrder
	scratch   [4]byte
}

// NewDecoder creates a new Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r), byteOrder: binary.BigEndian}
}

// Decode reads one snapshot. Malformed or truncated input is reported as
// apis.ErrCorruptSnapshot.
func (d *Decoder) Decode() (Snapshot, error) {
	var s Snapshot
	classes, err := d.readCount("class count")
	if err != nil {
		return Snapshot{}, err
	}
	for i := 0; i < classes; i++ {
		var c Class
		if c.TypeName, err = d.readString("type name"); err != nil {
			return Snapshot{}, err
		}
		n, err := d.readCount("selector count")
		if err != nil {
			return Snapshot{}, err
		}
		for j := 0; j < n; j++ {
			it, err := d.readItem()
			if err != nil {
				return Snapshot{}, err
			}
			c.Entries = append(c.Entries, it)
		}
		s.Classes = append(s.Classes, c)
	}
	return s, nil
}

func (d *Decoder) readItem() (Item, error) {
	sel, err := d.readString("selector")
	if err != nil {
		return Item{}, err
	}
	tag, err := d.r.ReadByte()
	if err != nil {
		return Item{}, corrupt("payload tag", err)
	}
	switch tag {
	case tagLocator:
		name, err := d.readString("method name")
		if err != nil {
			return Item{}, err
		}
		n, err := d.readCount("parameter count")
		if err != nil {
			return Item{}, err
		}
		params := make([]string, 0, min(n, 16))
		for i := 0; i < n; i++ {
			p, err := d.readString("parameter type")
			if err != nil {
				return Item{}, err
			}
			params = append(params, p)
		}
		return Item{Selector: sel, Payload: apis.Deferred{Locator: apis.NewLocator(name, params...)}}, nil
	case tagOpaque:
		kind, err := d.readString("opaque kind")
		if err != nil {
			return Item{}, err
		}
		data, err := d.readBytes("opaque data")
		if err != nil {
			return Item{}, err
		}
		return Item{Selector: sel, Payload: apis.Opaque{Kind: kind, Data: data}}, nil
	default:
		return Item{}, fmt.Errorf("%w: unknown payload tag 0x%02x for selector '%s'", apis.ErrCorruptSnapshot, tag, sel)
	}
}

func (d *Decoder) readCount(what string) (int, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:]); err != nil {
		return 0, corrupt(what, err)
	}
	n := int32(d.byteOrder.Uint32(d.scratch[:]))
	if n < 0 {
		return 0, fmt.Errorf("%w: negative %s %d", apis.ErrCorruptSnapshot, what, n)
	}
	return int(n), nil
}

// readChunk bounds how far readBytes grows its buffer ahead of the data
// actually read, so a bogus length cannot force a huge allocation.
const readChunk = 64 << 10

// readBytes returns nil for an empty field.
func (d *Decoder) readBytes(what string) ([]byte, error) {
	n, err := d.readCount(what + " length")
	if err != nil || n == 0 {
		return nil, err
	}
	buf := make([]byte, 0, min(n, readChunk))
	for len(buf) < n {
		step := min(n-len(buf), readChunk)
		buf = slices.Grow(buf, step)
		if _, err := io.ReadFull(d.r, buf[len(buf):len(buf)+step]); err != nil {
			return nil, corrupt(what, err)
		}
		buf = buf[:len(buf)+step]
	}
	return buf, nil
}

func (d *Decoder) readString(what string) (string, error) {
	b, err := d.readBytes(what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", apis.ErrCorruptSnapshot, what)
	}
	return string(b), nil
}

func corrupt(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: reading %s: %w", apis.ErrCorruptSnapshot, what, err)
}
