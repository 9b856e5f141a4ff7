// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/tstate"
)

// Account keys start with 0x0 or 0x1 (see [storage]), VM metadata is kept
// under prefixes that can never collide with them.
const (
	resultPrefix   byte = 0xf0
	metadataPrefix byte = 0xf1
)

var genesisKey = []byte{metadataPrefix, 'g'}

// [resultPrefix] + [txID]
func ResultKey(txID ids.ID) []byte {
	k := make([]byte, consts.ByteLen+consts.IDLen)
	k[0] = resultPrefix
	copy(k[1:], txID[:])
	return k
}

// initializeGenesis applies the genesis allocations on an empty database
// and checks that a non-empty database was created from the same genesis.
func (vm *VM) initializeGenesis(ctx context.Context) error {
	genesisBytes, err := vm.genesis.Bytes()
	if err != nil {
		return err
	}
	genesisHash := hashing.ComputeHash256(genesisBytes)

	stored, err := vm.db.Get(genesisKey)
	switch {
	case err == nil:
		if !bytes.Equal(stored, genesisHash) {
			return ErrGenesisMismatch
		}
		vm.log.Info("loaded existing state")
		return nil
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	scope := make(state.Keys, len(vm.genesis.CustomAllocation))
	for _, alloc := range vm.genesis.CustomAllocation {
		scope.Add(string(storage.BalanceKey(alloc.Address)), state.All)
	}
	ts := tstate.New(len(scope))
	view := ts.NewView(scope, map[string][]byte{})
	if err := vm.genesis.InitializeState(ctx, vm.tracer, view); err != nil {
		return fmt.Errorf("%w: unable to initialize genesis", err)
	}
	view.Commit()

	batch := vm.db.NewBatch()
	if _, err := ts.WriteTo(ctx, vm.tracer, batch); err != nil {
		return err
	}
	if err := batch.Put(genesisKey, genesisHash); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	vm.log.Info("initialized genesis",
		zap.Int("allocations", len(vm.genesis.CustomAllocation)),
		zap.Stringer("programID", vm.rules.ProgramID),
	)
	return nil
}

// ReadState reads [keys] from the latest committed state.
func (vm *VM) ReadState(_ context.Context, keys [][]byte) ([][]byte, []error) {
	values := make([][]byte, len(keys))
	errs := make([]error, len(keys))
	for i, k := range keys {
		values[i], errs[i] = vm.db.Get(k)
	}
	return values, errs
}

func (vm *VM) storeResult(batch database.KeyValueWriter, result *chain.Result) error {
	b, err := result.Bytes()
	if err != nil {
		return err
	}
	return batch.Put(ResultKey(result.TxID), b)
}

// GetResult returns the stored result of [txID].
func (vm *VM) GetResult(txID ids.ID) (*chain.Result, error) {
	if result, ok := vm.results.Get(txID); ok {
		return result, nil
	}
	b, err := vm.db.Get(ResultKey(txID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return chain.ParseResult(b)
}
