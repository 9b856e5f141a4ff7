// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/system"
)

var _ chain.Action = (*Deposit)(nil)

// Deposit moves funds from the signer into the vault and emits a
// [DepositEvent].
type Deposit struct {
	// Amount is moved from the signer to the vault.
	Amount uint64 `json:"amount"`
}

func (*Deposit) GetTypeID() uint8 {
	return consts.DepositID
}

func (*Deposit) Size() int {
	return consts.Uint64Len
}

func (*Deposit) StateKeys(actor codec.Address, programID codec.Address) state.Keys {
	return system.TransferStateKeys(actor, storage.VaultAddress(programID))
}

func (d *Deposit) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	_ ids.ID,
	emitter chain.Emitter,
) error {
	vault := storage.VaultAddress(r.GetProgramID())
	if err := system.Transfer(ctx, r, mu, actor, actor, vault, d.Amount); err != nil {
		return err
	}

	event := &DepositEvent{
		User:      actor,
		Amount:    d.Amount,
		Timestamp: timestamp / consts.MillisecondsPerSecond,
	}
	b, err := event.Bytes()
	if err != nil {
		return err
	}
	emitter.Emit(b)
	emitter.Log(fmt.Sprintf("Deposited %d lamports from %s", d.Amount, actor))
	return nil
}

func (d *Deposit) Marshal(p *codec.Packer) {
	p.PackUint64(d.Amount)
}

func UnmarshalDeposit(p *codec.Packer) (chain.Action, error) {
	var deposit Deposit
	// Zero deposits are accepted
	deposit.Amount = p.UnpackUint64(false)
	return &deposit, p.Err()
}
