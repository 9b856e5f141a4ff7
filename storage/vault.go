// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
)

var (
	StateSeed = []byte("state")
	VaultSeed = []byte("vault")
)

// VaultStateSize is the size of the stored record (discriminator +
// authority).
const VaultStateSize = codec.DiscriminatorLen + codec.AddressLen

var VaultStateDiscriminator = codec.AccountDiscriminator("VaultState")

// VaultState is the configuration record of the vault.
type VaultState struct {
	Authority codec.Address `json:"authority"`
}

// ProgramAddresses are the addresses derived from a program id.
type ProgramAddresses struct {
	State     codec.Address
	StateBump uint8
	Vault     codec.Address
	VaultBump uint8
}

var programAddresses sync.Map // codec.Address -> *ProgramAddresses

// DeriveAddresses returns the state and vault addresses of [programID].
// Results are cached.
func DeriveAddresses(programID codec.Address) (*ProgramAddresses, error) {
	if v, ok := programAddresses.Load(programID); ok {
		return v.(*ProgramAddresses), nil
	}
	stateAddr, stateBump, err := codec.FindProgramAddress([][]byte{StateSeed}, programID)
	if err != nil {
		return nil, err
	}
	vaultAddr, vaultBump, err := codec.FindProgramAddress([][]byte{VaultSeed}, programID)
	if err != nil {
		return nil, err
	}
	addrs := &ProgramAddresses{
		State:     stateAddr,
		StateBump: stateBump,
		Vault:     vaultAddr,
		VaultBump: vaultBump,
	}
	programAddresses.Store(programID, addrs)
	return addrs, nil
}

func mustDeriveAddresses(programID codec.Address) *ProgramAddresses {
	addrs, err := DeriveAddresses(programID)
	if err != nil {
		panic(err)
	}
	return addrs
}

// StateAddress is the address holding the [VaultState] record.
//
// A bump is found for all but a negligible fraction of program ids, so a
// failure here is a programming error.
func StateAddress(programID codec.Address) codec.Address {
	return mustDeriveAddresses(programID).State
}

// VaultAddress is the address holding the custodied funds.
func VaultAddress(programID codec.Address) codec.Address {
	return mustDeriveAddresses(programID).Vault
}

// GetVaultState returns the record stored at [addr]. The second value is
// false if no record exists.
func GetVaultState(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) (*VaultState, bool, error) {
	return innerGetVaultState(im.GetValue(ctx, DataKey(addr)))
}

// Used to serve RPC queries
func GetVaultStateFromState(
	ctx context.Context,
	f ReadState,
	addr codec.Address,
) (*VaultState, bool, error) {
	values, errs := f(ctx, [][]byte{DataKey(addr)})
	return innerGetVaultState(values[0], errs[0])
}

func innerGetVaultState(v []byte, err error) (*VaultState, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(v) != VaultStateSize {
		return nil, false, fmt.Errorf("%w: vault state is %d bytes", ErrInvalidRecordBytes, len(v))
	}
	vs, err := codec.UnmarshalRecord[VaultState](VaultStateDiscriminator, v)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidRecordBytes, err)
	}
	return vs, true, nil
}

// SetVaultState stores [vs] at [addr].
func SetVaultState(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	vs *VaultState,
) error {
	b, err := codec.MarshalRecord(VaultStateDiscriminator, *vs)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, DataKey(addr), b)
}
