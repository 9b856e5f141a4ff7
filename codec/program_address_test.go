// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/consts"
)

func TestFindProgramAddress(t *testing.T) {
	require := require.New(t)
	programID := MustParseAddress(consts.DefaultProgramID)

	state, stateBump, err := FindProgramAddress([][]byte{[]byte("state")}, programID)
	require.NoError(err)
	require.False(IsOnCurve(state))

	// Derivation is deterministic
	again, againBump, err := FindProgramAddress([][]byte{[]byte("state")}, programID)
	require.NoError(err)
	require.Equal(state, again)
	require.Equal(stateBump, againBump)

	// The returned bump recreates the address
	created, err := CreateProgramAddress([][]byte{[]byte("state"), {stateBump}}, programID)
	require.NoError(err)
	require.Equal(state, created)

	// Different labels and programs give different addresses
	vault, _, err := FindProgramAddress([][]byte{[]byte("vault")}, programID)
	require.NoError(err)
	require.NotEqual(state, vault)

	other, _, err := FindProgramAddress([][]byte{[]byte("state")}, Address{1})
	require.NoError(err)
	require.NotEqual(state, other)
}

func TestProgramAddressVectors(t *testing.T) {
	loader := MustParseAddress("BPFLoaderUpgradeab1e11111111111111111111111")
	seedKey := MustParseAddress("SeedPubey1111111111111111111111111111111111")
	tests := []struct {
		name     string
		seeds    [][]byte
		expected string
	}{
		{
			name:     "empty seed",
			seeds:    [][]byte{{}, {1}},
			expected: "BwqrghZA2htAcqq8dzP1WDAhTXYTYWj7CHxF5j7TDBAe",
		},
		{
			name:     "utf8 seed",
			seeds:    [][]byte{[]byte("☉"), {0}},
			expected: "13yWmRpaTR4r5nAktwLqMpRNr28tnVUZw26rTvPSSB19",
		},
		{
			name:     "two seeds",
			seeds:    [][]byte{[]byte("Talking"), []byte("Squirrels")},
			expected: "2fnQrngrQT4SeLcdToJAD96phoEjNL2man2kfRLCASVk",
		},
		{
			name:     "address seed",
			seeds:    [][]byte{seedKey[:], {1}},
			expected: "976ymqVnfE32QFe6NfGDctSvVa36LWnvYxhU6G2232YL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := CreateProgramAddress(tt.seeds, loader)
			require.NoError(t, err)
			require.Equal(t, tt.expected, addr.String())
		})
	}
}

func TestVaultProgramAddresses(t *testing.T) {
	programID := MustParseAddress(consts.DefaultProgramID)
	tests := []struct {
		seed     string
		expected string
		bump     uint8
	}{
		{seed: "state", expected: "846CuSccLQ6jQSsvwNCoBkvvGXPGGm7ivVmT3a3GVkk7", bump: 254},
		{seed: "vault", expected: "BtWhNzGgdC9aX14VfQtYQuiqvxidMSAzParX6UUXzgn2", bump: 255},
	}
	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			require := require.New(t)

			addr, bump, err := FindProgramAddress([][]byte{[]byte(tt.seed)}, programID)
			require.NoError(err)
			require.Equal(tt.expected, addr.String())
			require.Equal(tt.bump, bump)
		})
	}

	// Bump 255 of "state" is on the curve
	_, err := CreateProgramAddress([][]byte{[]byte("state"), {255}}, programID)
	require.ErrorIs(t, err, ErrOnCurve)
}

func TestProgramAddressInvalidSeeds(t *testing.T) {
	require := require.New(t)

	_, err := CreateProgramAddress([][]byte{make([]byte, MaxSeedLen+1)}, EmptyAddress)
	require.ErrorIs(err, ErrInvalidSeeds)

	seeds := make([][]byte, MaxSeeds+1)
	_, err = CreateProgramAddress(seeds, EmptyAddress)
	require.ErrorIs(err, ErrInvalidSeeds)

	_, _, err = FindProgramAddress(make([][]byte, MaxSeeds), EmptyAddress)
	require.ErrorIs(err, ErrInvalidSeeds)
}

func TestIsOnCurve(t *testing.T) {
	require := require.New(t)

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(err)
	require.True(IsOnCurve(Address(pub)))
}
