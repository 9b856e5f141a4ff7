// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/chain/chaintest"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/storage"
)

func TestTransfer(t *testing.T) {
	var (
		from = codec.Address{1}
		to   = codec.Address{2}
	)
	tests := []struct {
		name         string
		signer       codec.Address
		to           codec.Address
		balance      uint64
		toBalance    uint64
		minBalance   uint64
		amount       uint64
		expectedErr  error
		expectedFrom uint64
		expectedTo   uint64
	}{
		{name: "transfer", signer: from, to: to, balance: 100, amount: 40, expectedFrom: 60, expectedTo: 40},
		{name: "empty source", signer: from, to: to, balance: 100, minBalance: 10, amount: 100, expectedTo: 100},
		{name: "zero amount", signer: from, to: to, balance: 100, expectedFrom: 100},
		{name: "self transfer", signer: from, to: from, balance: 100, amount: 50, expectedFrom: 100, expectedTo: 100},
		{name: "missing signer", signer: to, to: to, balance: 100, amount: 1, expectedErr: ErrMissingSigner, expectedFrom: 100},
		{name: "insufficient", signer: from, to: to, balance: 10, amount: 11, expectedErr: storage.ErrInsufficientFunds, expectedFrom: 10},
		{name: "below minimum", signer: from, to: to, balance: 100, minBalance: 10, amount: 95, expectedErr: storage.ErrInsufficientFunds, expectedFrom: 100},
		{name: "recipient overflow", signer: from, to: to, balance: 1, toBalance: consts.MaxUint64, amount: 1, expectedErr: storage.ErrBalanceOverflow, expectedTo: consts.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			store := chaintest.NewInMemoryStore()
			require.NoError(storage.SetBalance(ctx, store, from, tt.balance))
			require.NoError(storage.SetBalance(ctx, store, to, tt.toBalance))
			rules := chaintest.NewDefaultRules()
			rules.MinAccountBalance = tt.minBalance

			err := Transfer(ctx, rules, store, tt.signer, from, tt.to, tt.amount)
			require.ErrorIs(err, tt.expectedErr)
			if err != nil {
				// Overflow fails after the debit; the caller rolls back
				if !errors.Is(tt.expectedErr, storage.ErrBalanceOverflow) {
					bal, err := storage.GetBalance(ctx, store, from)
					require.NoError(err)
					require.Equal(tt.expectedFrom, bal)
				}
				return
			}

			bal, err := storage.GetBalance(ctx, store, from)
			require.NoError(err)
			require.Equal(tt.expectedFrom, bal)
			bal, err = storage.GetBalance(ctx, store, tt.to)
			require.NoError(err)
			require.Equal(tt.expectedTo, bal)
		})
	}
}

func TestTransferStateKeys(t *testing.T) {
	require := require.New(t)

	keys := TransferStateKeys(codec.Address{1}, codec.Address{2})
	require.Len(keys, 2)
}
