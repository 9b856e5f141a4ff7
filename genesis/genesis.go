// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

type CustomAllocation struct {
	Address codec.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
	Rules            *Rules              `json:"initialRules"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{
		CustomAllocation: customAllocations,
		Rules:            NewDefaultRules(),
	}
}

// Load parses [genesisBytes] and binds the rules to the network and chain
// the node runs on. Missing rules fall back to [NewDefaultRules]. If
// [chainID] is empty, it is derived from [genesisBytes].
func Load(genesisBytes []byte, networkID uint32, chainID ids.ID) (*Genesis, error) {
	genesis := &Genesis{}
	if err := json.Unmarshal(genesisBytes, genesis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genesis %s: %w", string(genesisBytes), err)
	}
	if genesis.Rules == nil {
		genesis.Rules = NewDefaultRules()
	}
	if chainID == ids.Empty {
		chainID = ChainID(genesisBytes)
	}
	genesis.Rules.NetworkID = networkID
	genesis.Rules.ChainID = chainID
	if err := genesis.Verify(); err != nil {
		return nil, err
	}
	return genesis, nil
}

// ChainID is the chain ID of a node started from [genesisBytes] without an
// explicit one.
func ChainID(genesisBytes []byte) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(genesisBytes))
}

func (g *Genesis) Verify() error {
	if err := g.Rules.Verify(); err != nil {
		return err
	}
	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		var err error
		supply, err = safemath.Add(supply, alloc.Balance)
		if err != nil {
			return fmt.Errorf("%w: supply overflows at %s", ErrInvalidAllocation, alloc.Address)
		}
	}
	return nil
}

// InitializeState credits every allocation. It is only called on a fresh
// database.
func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState")
	defer span.End()

	for _, alloc := range g.CustomAllocation {
		if _, err := storage.AddBalance(ctx, mu, alloc.Address, alloc.Balance); err != nil {
			return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	return nil
}

func (g *Genesis) Bytes() ([]byte, error) {
	return json.Marshal(g)
}
