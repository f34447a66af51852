// Copyright 2018 The Cop Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package trail

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"io"
)

// Codec compresses and decompresses the value payload of a packed trail
// block. Addresses are never serialized through a Codec — they remain live
// Go pointers for the lifetime of the process — only the old-value payload
// is encoded, matching the `trail_compression` Solver parameter
// (`none`/`generic`).
type Codec interface {
	Encode(values []int64) []byte
	Decode(data []byte, n int) []int64
}

// IdentityCodec stores values as a flat little-endian array with no
// compression. This is the `trail_compression: none` option and the
// default.
type IdentityCodec struct{}

func (IdentityCodec) Encode(values []int64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return buf
}

func (IdentityCodec) Decode(data []byte, n int) []int64 {
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = int64(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out
}

// GenericCodec compresses the value payload with DEFLATE
// (compress/flate). This is the `trail_compression: generic` option: it
// trades CPU for memory on blocks that have rolled off the working window
// and are unlikely to be visited again soon.
type GenericCodec struct{}

func (GenericCodec) Encode(values []int64) []byte {
	raw := IdentityCodec{}.Encode(values)
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	_, _ = w.Write(raw)
	_ = w.Close()
	return buf.Bytes()
}

func (GenericCodec) Decode(data []byte, n int) []int64 {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		panic(UsageError("trail: corrupt packed block: " + err.Error()))
	}
	return IdentityCodec{}.Decode(raw, n)
}

// UsageError reports a programmer error in the reversible-state layer (see
// base spec §7.4): it is fatal and never expected to surface past a
// top-level recover used only for process-exit diagnostics.
type UsageError string

func (e UsageError) Error() string { return string(e) }
