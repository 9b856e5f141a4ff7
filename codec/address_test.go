// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/consts"
)

func TestAddressBase58(t *testing.T) {
	require := require.New(t)

	programID := MustParseAddress(consts.DefaultProgramID)
	require.Equal(consts.DefaultProgramID, programID.String())

	parsed, err := ParseAddress(programID.String())
	require.NoError(err)
	require.Equal(programID, parsed)
}

func TestAddressInvalid(t *testing.T) {
	require := require.New(t)

	_, err := ParseAddress("0OIl")
	require.ErrorIs(err, ErrInvalidAddress)

	// Valid base58 but too short
	_, err = ParseAddress("abc")
	require.ErrorIs(err, ErrInvalidAddress)

	_, err = ToAddress(make([]byte, AddressLen+1))
	require.ErrorIs(err, ErrInvalidAddress)

	require.Panics(func() { MustParseAddress("abc") })
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)

	type holder struct {
		Authority Address `json:"authority"`
	}
	h := holder{Authority: Address{9, 9, 9}}
	b, err := json.Marshal(h)
	require.NoError(err)
	require.Contains(string(b), h.Authority.String())

	var decoded holder
	require.NoError(json.Unmarshal(b, &decoded))
	require.Equal(h, decoded)
}
