// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/codec"
)

func TestParseAllocations(t *testing.T) {
	require := require.New(t)

	addr := codec.Address{0x01}
	allocs, err := parseAllocations([]string{addr.String() + "=1000"})
	require.NoError(err)
	require.Len(allocs, 1)
	require.Equal(addr, allocs[0].Address)
	require.Equal(uint64(1000), allocs[0].Balance)

	_, err = parseAllocations([]string{addr.String()})
	require.ErrorContains(err, "expected address=lamports")
	_, err = parseAllocations([]string{addr.String() + "=-1"})
	require.Error(err)
	_, err = parseAllocations([]string{"0OIl=1"})
	require.ErrorIs(err, codec.ErrInvalidAddress)
}
