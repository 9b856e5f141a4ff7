// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys encodes state keys with a suffix that bounds the size of the
// value stored under them.
package keys

import (
	"encoding/binary"

	"github.com/ava-labs/vaultvm/consts"
)

const chunkSize = 64 // bytes

// Valid returns whether [key] is long enough to carry a chunk suffix.
func Valid(key []byte) bool {
	return len(key) >= consts.Uint16Len
}

// MaxChunks returns the chunk suffix of [key].
func MaxChunks(key []byte) (uint16, bool) {
	l := len(key)
	if l < consts.Uint16Len {
		return 0, false
	}
	return binary.BigEndian.Uint16(key[l-consts.Uint16Len:]), true
}

// NumChunks returns how many chunks [value] occupies.
func NumChunks(value []byte) (uint16, bool) {
	return numChunks(len(value))
}

func numChunks(valueLen int) (uint16, bool) {
	if valueLen == 0 {
		return 0, true
	}
	raw := (valueLen + chunkSize - 1) / chunkSize
	if raw > int(consts.MaxUint16) {
		return 0, false
	}
	return uint16(raw), true
}

// VerifyValue returns whether [value] fits under the chunk limit of [key].
func VerifyValue(key []byte, value []byte) bool {
	valueChunks, ok := NumChunks(value)
	if !ok {
		return false
	}
	keyChunks, ok := MaxChunks(key)
	if !ok {
		return false
	}
	return valueChunks <= keyChunks
}

// Encode appends the number of chunks needed to hold [maxSize] bytes to
// [key].
func Encode(key []byte, maxSize int) ([]byte, bool) {
	numChunks, ok := numChunks(maxSize)
	if !ok {
		return nil, false
	}
	return EncodeChunks(key, numChunks), true
}

// EncodeChunks appends [maxChunks] to [key].
func EncodeChunks(key []byte, maxChunks uint16) []byte {
	return binary.BigEndian.AppendUint16(key, maxChunks)
}
