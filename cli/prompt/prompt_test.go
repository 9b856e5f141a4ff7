// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/codec"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		balance     uint64
		expectedErr error
	}{
		{name: "whole", input: "1", balance: 1_000_000_000},
		{name: "fraction", input: " 0.5 ", balance: 1_000_000_000},
		{name: "empty", input: "", balance: 1, expectedErr: ErrInputEmpty},
		{name: "zero", input: "0", balance: 1, expectedErr: ErrZeroAmount},
		{name: "above balance", input: "1.000000001", balance: 1_000_000_000, expectedErr: ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, ValidateAmount(tt.input, tt.balance), tt.expectedErr)
		})
	}
}

func TestValidateAddress(t *testing.T) {
	require := require.New(t)

	require.NoError(ValidateAddress(codec.Address{0x01}.String()))
	require.ErrorIs(ValidateAddress("not-base58-0OIl"), codec.ErrInvalidAddress)
}

func TestValidateBool(t *testing.T) {
	require := require.New(t)

	require.NoError(ValidateBool("y"))
	require.NoError(ValidateBool("N"))
	require.ErrorIs(ValidateBool(""), ErrInputEmpty)
	require.ErrorIs(ValidateBool("maybe"), ErrInvalidChoice)
}
