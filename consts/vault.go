// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/version"
)

const (
	Name     = "vaultvm"
	Symbol   = "SOL"
	Decimals = 9

	// DefaultProgramID is the base58 identity the vault program was first
	// deployed under. Genesis may override it.
	DefaultProgramID = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"
)

const (
	// Action TypeIDs
	InitializeID uint8 = 0
	DepositID    uint8 = 1
	WithdrawID   uint8 = 2

	// Auth TypeIDs
	ED25519ID uint8 = 0
)

var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}

var Version = &version.Semantic{
	Major: 0,
	Minor: 0,
	Patch: 1,
}
