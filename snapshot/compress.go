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
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"dirpx.dev/perform/apis"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// compressor wraps w so that everything written is compressed with comp.
// Closing the returned writer finishes the frame but does not close w.
func compressor(w io.Writer, comp apis.Compression) (io.WriteCloser, error) {
	switch comp {
	case apis.CompressionNone:
		return nopWriteCloser{w}, nil
	case apis.CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case apis.CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", apis.ErrInvalidArgument, comp)
	}
}

// decompressor wraps r to undo comp. The returned close function releases
// decoder resources.
func decompressor(r io.Reader, comp apis.Compression) (io.Reader, func(), error) {
	switch comp {
	case apis.CompressionNone:
		return r, func() {}, nil
	case apis.CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case apis.CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: compression %s", apis.ErrInvalidArgument, comp)
	}
}
