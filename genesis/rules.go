// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/storage"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// Storage is priced per byte of record data plus a fixed account overhead
// of 128 bytes.
const (
	accountOverhead = 128
	byteCost        = 6_960
)

var _ chain.Rules = (*Rules)(nil)

type Rules struct {
	NetworkID uint32 `json:"networkID"`
	ChainID   ids.ID `json:"chainID"`

	// ProgramID is the address every vault account is derived from.
	ProgramID codec.Address `json:"programID"`

	ValidityWindow  int64 `json:"validityWindow"` // ms
	MaxActionsPerTx uint8 `json:"maxActionsPerTx"`

	MinAccountBalance uint64 `json:"minAccountBalance"`
	StorageBaseCost   uint64 `json:"storageBaseCost"`
	StorageByteCost   uint64 `json:"storageByteCost"`
}

func NewDefaultRules() *Rules {
	return &Rules{
		ProgramID:         codec.MustParseAddress(consts.DefaultProgramID),
		ValidityWindow:    60 * consts.MillisecondsPerSecond,
		MaxActionsPerTx:   16,
		MinAccountBalance: accountOverhead * byteCost,
		StorageBaseCost:   accountOverhead * byteCost,
		StorageByteCost:   byteCost,
	}
}

func (r *Rules) Verify() error {
	switch {
	case r.ValidityWindow <= 0 || r.ValidityWindow%consts.MillisecondsPerSecond != 0:
		return fmt.Errorf("%w: validityWindow=%d", ErrInvalidRules, r.ValidityWindow)
	case r.MaxActionsPerTx == 0:
		return fmt.Errorf("%w: maxActionsPerTx=0", ErrInvalidRules)
	case r.ProgramID == codec.EmptyAddress:
		return fmt.Errorf("%w: empty programID", ErrInvalidRules)
	}
	if _, err := storage.DeriveAddresses(r.ProgramID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if _, err := r.StorageCost(storage.VaultStateSize); err != nil {
		return fmt.Errorf("%w: storage cost of the vault record: %w", ErrInvalidRules, err)
	}
	return nil
}

func (r *Rules) GetNetworkID() uint32 {
	return r.NetworkID
}

func (r *Rules) GetChainID() ids.ID {
	return r.ChainID
}

func (r *Rules) GetValidityWindow() int64 {
	return r.ValidityWindow
}

func (r *Rules) GetMaxActionsPerTx() uint8 {
	return r.MaxActionsPerTx
}

func (r *Rules) GetProgramID() codec.Address {
	return r.ProgramID
}

func (r *Rules) GetMinAccountBalance() uint64 {
	return r.MinAccountBalance
}

func (r *Rules) StorageCost(dataLen uint64) (uint64, error) {
	byteCost, err := safemath.Mul(r.StorageByteCost, dataLen)
	if err != nil {
		return 0, err
	}
	return safemath.Add(r.StorageBaseCost, byteCost)
}
