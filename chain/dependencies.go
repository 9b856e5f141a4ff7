// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
)

type Parser interface {
	Rules() Rules
	ActionRegistry() *codec.TypeParser[Action]
	AuthRegistry() *codec.TypeParser[Auth]

	// ErrorCode returns the stable numeric code of an execution error. Zero
	// means the error has no code.
	ErrorCode(error) uint32
}

type Rules interface {
	// Should almost always be constant (unless there is a fork of
	// a live network)
	GetNetworkID() uint32
	GetChainID() ids.ID

	GetValidityWindow() int64 // in milliseconds
	GetMaxActionsPerTx() uint8

	// GetProgramID is the identity every program-derived address of the
	// vault is derived under.
	GetProgramID() codec.Address

	// GetMinAccountBalance is the smallest non-zero balance the native
	// transfer primitive may leave in a source account.
	GetMinAccountBalance() uint64

	// StorageCost is the amount that must be held by an account storing
	// [dataLen] bytes of record data. It fails if the amount overflows.
	StorageCost(dataLen uint64) (uint64, error)
}

// Emitter collects the diagnostic logs and events an action produces.
type Emitter interface {
	Log(msg string)
	Emit(event []byte)
}

type Action interface {
	codec.Typed

	// Size is the number of bytes it takes to represent this [Action]. This is used to preallocate
	// memory during encoding and to charge bandwidth fees.
	Size() int

	// StateKeys is a full enumeration of all database keys that could be touched during execution
	// by an [Action]. This is used to prefetch state and to lock the accounts it touches.
	//
	// All keys specified must be suffixed with the number of chunks that could ever be read from that
	// key (formatted as a big-endian uint16).
	StateKeys(actor codec.Address, programID codec.Address) state.Keys

	// Execute actually runs the [Action]. Any state changes that the [Action] performs should
	// be done here.
	//
	// If any keys are touched during [Execute] that are not specified in [StateKeys], the transaction
	// will revert.
	//
	// An error reverts every change made by the transaction.
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		timestamp int64,
		actor codec.Address,
		actionID ids.ID,
		emitter Emitter,
	) error

	// Marshal encodes an [Action] as bytes.
	Marshal(p *codec.Packer)
}

type Auth interface {
	codec.Typed

	// Verify is run concurrently during transaction verification. It may not
	// access state.
	Verify(ctx context.Context, msg []byte) error

	// Actor is the account that co-signed the transaction. Every [Action]
	// in the transaction runs on its behalf.
	Actor() codec.Address

	// Size is the number of bytes it takes to represent this [Auth].
	Size() int

	// Marshal encodes an [Auth] as bytes.
	Marshal(p *codec.Packer)
}

type AuthBatchVerifier interface {
	Add([]byte, Auth) func() error
	Done() []func() error
}

// AuthFactory is used to sign payloads.
type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}
