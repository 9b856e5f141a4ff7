// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

var _ chain.Rules = (*Rules)(nil)

// Rules is a [chain.Rules] with every parameter exposed for tests.
type Rules struct {
	NetworkID         uint32
	ChainID           ids.ID
	ValidityWindow    int64
	MaxActionsPerTx   uint8
	ProgramID         codec.Address
	MinAccountBalance uint64

	// StorageCost is StorageBaseCost + StorageByteCost * dataLen
	StorageBaseCost uint64
	StorageByteCost uint64
}

func NewDefaultRules() *Rules {
	return &Rules{
		NetworkID:         1,
		ChainID:           ids.Empty,
		ValidityWindow:    60 * consts.MillisecondsPerSecond,
		MaxActionsPerTx:   16,
		ProgramID:         codec.MustParseAddress(consts.DefaultProgramID),
		MinAccountBalance: 0,
		StorageBaseCost:   0,
		StorageByteCost:   0,
	}
}

func (r *Rules) GetNetworkID() uint32 { return r.NetworkID }
func (r *Rules) GetChainID() ids.ID { return r.ChainID }
func (r *Rules) GetValidityWindow() int64 { return r.ValidityWindow }
func (r *Rules) GetMaxActionsPerTx() uint8 { return r.MaxActionsPerTx }
func (r *Rules) GetProgramID() codec.Address { return r.ProgramID }
func (r *Rules) GetMinAccountBalance() uint64 { return r.MinAccountBalance }
func (r *Rules) StorageCost(dataLen uint64) (uint64, error) {
	byteCost, err := safemath.Mul(r.StorageByteCost, dataLen)
	if err != nil {
		return 0, err
	}
	return safemath.Add(r.StorageBaseCost, byteCost)
}
