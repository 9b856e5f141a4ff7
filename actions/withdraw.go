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
)

var _ chain.Action = (*Withdraw)(nil)

// Withdraw moves funds out of the vault. Only the vault authority may sign
// it.
type Withdraw struct {
	// To is the recipient of [Amount]. Any address is accepted.
	To codec.Address `json:"to"`

	// Amount is moved from the vault to [To].
	Amount uint64 `json:"amount"`
}

func (*Withdraw) GetTypeID() uint8 {
	return consts.WithdrawID
}

func (*Withdraw) Size() int {
	return codec.AddressLen + consts.Uint64Len
}

func (w *Withdraw) StateKeys(_ codec.Address, programID codec.Address) state.Keys {
	vault := storage.VaultAddress(programID)
	keys := state.Keys{
		string(storage.DataKey(storage.StateAddress(programID))): state.Read,
		string(storage.BalanceKey(vault)):                        state.Write,
	}
	keys.Add(string(storage.BalanceKey(w.To)), state.All)
	return keys
}

func (w *Withdraw) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
	emitter chain.Emitter,
) error {
	programID := r.GetProgramID()
	vs, exists, err := storage.GetVaultState(ctx, mu, storage.StateAddress(programID))
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotInitialized
	}
	if vs.Authority != actor {
		return fmt.Errorf("%w: signer=%s", ErrUnauthorized, actor)
	}

	// The vault is derived from the program id so the program moves its
	// funds directly instead of through the transfer primitive.
	if _, err := storage.DebitProgramAccount(ctx, mu, storage.VaultAddress(programID), w.Amount); err != nil {
		return err
	}
	if _, err := storage.CreditAccount(ctx, mu, w.To, w.Amount); err != nil {
		return err
	}
	emitter.Log(fmt.Sprintf("Withdrawn %d lamports to %s", w.Amount, w.To))
	return nil
}

func (w *Withdraw) Marshal(p *codec.Packer) {
	p.PackAddress(w.To)
	p.PackUint64(w.Amount)
}

func UnmarshalWithdraw(p *codec.Packer) (chain.Action, error) {
	var withdraw Withdraw
	p.UnpackAddress(&withdraw.To)
	withdraw.Amount = p.UnpackUint64(false)
	return &withdraw, p.Err()
}
