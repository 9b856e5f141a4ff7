// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"math"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/chain/chaintest"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/storage"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

func TestLoad(t *testing.T) {
	require := require.New(t)

	addr := codec.Address{1, 2, 3}
	g := NewDefaultGenesis([]*CustomAllocation{{Address: addr, Balance: 10_000_000}})
	b, err := g.Bytes()
	require.NoError(err)

	chainID := ids.GenerateTestID()
	loaded, err := Load(b, 5, chainID)
	require.NoError(err)
	require.Equal(uint32(5), loaded.Rules.GetNetworkID())
	require.Equal(chainID, loaded.Rules.GetChainID())
	require.Equal(codec.MustParseAddress(consts.DefaultProgramID), loaded.Rules.GetProgramID())
	require.Len(loaded.CustomAllocation, 1)
	require.Equal(addr, loaded.CustomAllocation[0].Address)
}

func TestLoadDefaultsRules(t *testing.T) {
	require := require.New(t)

	loaded, err := Load([]byte(`{"customAllocation":[]}`), 1, ids.Empty)
	require.NoError(err)
	require.Equal(NewDefaultRules().StorageByteCost, loaded.Rules.StorageByteCost)
}

func TestLoadDerivesChainID(t *testing.T) {
	require := require.New(t)

	b, err := NewDefaultGenesis(nil).Bytes()
	require.NoError(err)

	loaded, err := Load(b, 1, ids.Empty)
	require.NoError(err)
	require.NotEqual(ids.Empty, loaded.Rules.GetChainID())
	require.Equal(ChainID(b), loaded.Rules.GetChainID())

	other, err := Load([]byte(`{"customAllocation":[]}`), 1, ids.Empty)
	require.NoError(err)
	require.NotEqual(loaded.Rules.GetChainID(), other.Rules.GetChainID())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		genesis string
		err     error
	}{
		{
			name:    "zero validity window",
			genesis: `{"initialRules":{"programID":"Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS","validityWindow":0,"maxActionsPerTx":1}}`,
			err:     ErrInvalidRules,
		},
		{
			name:    "no actions",
			genesis: `{"initialRules":{"programID":"Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS","validityWindow":1000,"maxActionsPerTx":0}}`,
			err:     ErrInvalidRules,
		},
		{
			name:    "empty program",
			genesis: `{"initialRules":{"validityWindow":1000,"maxActionsPerTx":1}}`,
			err:     ErrInvalidRules,
		},
		{
			name:    "supply overflow",
			genesis: `{"customAllocation":[{"address":"Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS","balance":18446744073709551615},{"address":"Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS","balance":1}]}`,
			err:     ErrInvalidAllocation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.genesis), 1, ids.Empty)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestInitializeState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	a := codec.Address{1}
	b := codec.Address{2}
	g := NewDefaultGenesis([]*CustomAllocation{
		{Address: a, Balance: 100},
		{Address: b, Balance: 200},
		{Address: a, Balance: 50},
	})
	store := chaintest.NewInMemoryStore()
	require.NoError(g.InitializeState(ctx, trace.Noop, store))

	bal, err := storage.GetBalance(ctx, store, a)
	require.NoError(err)
	require.Equal(uint64(150), bal)
	bal, err = storage.GetBalance(ctx, store, b)
	require.NoError(err)
	require.Equal(uint64(200), bal)
}

func TestStorageCost(t *testing.T) {
	require := require.New(t)

	r := NewDefaultRules()
	cost, err := r.StorageCost(storage.VaultStateSize)
	require.NoError(err)
	require.Equal(uint64((128+storage.VaultStateSize)*6_960), cost)

	// A cost that would wrap around is an error, never a cheap record
	r.StorageByteCost = math.MaxUint64 / 8
	r.StorageBaseCost = 1
	_, err = r.StorageCost(storage.VaultStateSize)
	require.ErrorIs(err, safemath.ErrOverflow)
	require.ErrorIs(r.Verify(), ErrInvalidRules)

	r = NewDefaultRules()
	r.StorageBaseCost = math.MaxUint64
	_, err = r.StorageCost(storage.VaultStateSize)
	require.ErrorIs(err, safemath.ErrOverflow)
	require.ErrorIs(r.Verify(), ErrInvalidRules)
}
