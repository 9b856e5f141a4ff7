// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package system implements the native transfer primitive programs use to
// move funds out of signer accounts.
package system

import (
	"context"
	"fmt"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// TransferStateKeys are the keys [Transfer] touches.
func TransferStateKeys(from, to codec.Address) state.Keys {
	return state.Keys{
		string(storage.BalanceKey(from)): state.Write,
		string(storage.BalanceKey(to)):   state.All,
	}
}

// Transfer moves [amount] from [from] to [to]. [from] must be the
// transaction signer. The source may be emptied but may not be left with a
// non-zero balance below [chain.Rules.GetMinAccountBalance].
func Transfer(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	signer codec.Address,
	from codec.Address,
	to codec.Address,
	amount uint64,
) error {
	if from != signer {
		return fmt.Errorf("%w: from=%s signer=%s", ErrMissingSigner, from, signer)
	}
	bal, err := storage.GetBalance(ctx, mu, from)
	if err != nil {
		return err
	}
	remaining, err := smath.Sub(bal, amount)
	if err != nil {
		return fmt.Errorf("%w: balance %d < %d", storage.ErrInsufficientFunds, bal, amount)
	}
	if remaining != 0 && remaining < r.GetMinAccountBalance() {
		return fmt.Errorf(
			"%w: remaining balance %d below minimum %d",
			storage.ErrInsufficientFunds,
			remaining,
			r.GetMinAccountBalance(),
		)
	}
	if amount == 0 || from == to {
		return nil
	}
	if _, err := storage.SubBalance(ctx, mu, from, amount); err != nil {
		return err
	}
	_, err = storage.AddBalance(ctx, mu, to, amount)
	return err
}
