// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"strings"
)

// Bytes is a byte slice that is hex encoded in JSON. Signed txs travel over
// the API in this form.
type Bytes []byte

func (b Bytes) String() string {
	return hex.EncodeToString(b)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts hex with or without a 0x prefix.
func (b *Bytes) UnmarshalText(text []byte) error {
	decoded, err := LoadHex(string(text), -1)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// LoadHex decodes [s] and checks that it holds [expectedSize] bytes. A
// negative [expectedSize] skips the size check.
func LoadHex(s string, expectedSize int) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if expectedSize >= 0 && len(decoded) != expectedSize {
		return nil, ErrInvalidSize
	}
	return decoded, nil
}
