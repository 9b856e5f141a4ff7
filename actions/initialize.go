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

var _ chain.Action = (*Initialize)(nil)

// Initialize creates the vault configuration record and makes the signer
// its authority. It can succeed only once per program id.
type Initialize struct{}

func (*Initialize) GetTypeID() uint8 {
	return consts.InitializeID
}

func (*Initialize) Size() int {
	return 0
}

func (*Initialize) StateKeys(actor codec.Address, programID codec.Address) state.Keys {
	stateAddr := storage.StateAddress(programID)
	keys := system.TransferStateKeys(actor, stateAddr)
	keys.Add(string(storage.DataKey(stateAddr)), state.All)
	return keys
}

func (*Initialize) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
	emitter chain.Emitter,
) error {
	stateAddr := storage.StateAddress(r.GetProgramID())
	_, exists, err := storage.GetVaultState(ctx, mu, stateAddr)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}

	// The payer funds the storage of the record.
	cost, err := r.StorageCost(storage.VaultStateSize)
	if err != nil {
		return err
	}
	if err := system.Transfer(ctx, r, mu, actor, actor, stateAddr, cost); err != nil {
		return err
	}
	if err := storage.SetVaultState(ctx, mu, stateAddr, &storage.VaultState{Authority: actor}); err != nil {
		return err
	}
	emitter.Log(fmt.Sprintf("KoshPay Vault Initialized. Authority: %s", actor))
	return nil
}

func (*Initialize) Marshal(*codec.Packer) {}

func UnmarshalInitialize(*codec.Packer) (chain.Action, error) {
	return &Initialize{}, nil
}
