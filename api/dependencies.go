// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/event"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/indexer"
	"github.com/ava-labs/vaultvm/storage"
)

type VM interface {
	Rules() *genesis.Rules
	Parser() chain.Parser
	Tracer() trace.Tracer
	Logger() logging.Logger
	ProgramID() codec.Address
	VaultAddress() codec.Address
	StateAddress() codec.Address
	Balance(ctx context.Context, addr codec.Address) (uint64, error)
	VaultState(ctx context.Context) (*storage.VaultState, bool, error)
	Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error)
	GetResult(txID ids.ID) (*chain.Result, error)
	Subscribe(sub event.Subscription[*chain.Result]) func() error
}

//go:generate go run go.uber.org/mock/mockgen -package=apitest -destination=apitest/mock_deposit_index.go github.com/ava-labs/vaultvm/api DepositIndex

// DepositIndex serves indexed deposits. It is nil when the node does not
// store deposits.
type DepositIndex interface {
	Latest(offset uint64, limit int) ([]*indexer.Deposit, error)
	Deposits(user codec.Address, offset uint64, limit int) ([]*indexer.Deposit, error)
	Summary(user codec.Address) (*indexer.Summary, error)
}
