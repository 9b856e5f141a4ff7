// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/state"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

type ReadState func(context.Context, [][]byte) ([][]byte, []error)

// State
// 0x0/ (balance)
//   -> [address] => balance
// 0x1/ (data)
//   -> [address] => record

const (
	balancePrefix byte = 0x0
	dataPrefix    byte = 0x1
)

const (
	BalanceChunks uint16 = 1
	DataChunks    uint16 = 1
)

// [balancePrefix] + [address]
func BalanceKey(addr codec.Address) []byte {
	k := make([]byte, consts.ByteLen+codec.AddressLen+consts.Uint16Len)
	k[0] = balancePrefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], BalanceChunks)
	return k
}

// [dataPrefix] + [address]
func DataKey(addr codec.Address) []byte {
	k := make([]byte, consts.ByteLen+codec.AddressLen+consts.Uint16Len)
	k[0] = dataPrefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], DataChunks)
	return k
}

// GetBalance returns the balance of [addr]. Accounts that do not exist have
// a balance of 0.
func GetBalance(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) (uint64, error) {
	_, bal, _, err := getBalance(ctx, im, addr)
	return bal, err
}

func getBalance(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) ([]byte, uint64, bool, error) {
	k := BalanceKey(addr)
	bal, exists, err := innerGetBalance(im.GetValue(ctx, k))
	return k, bal, exists, err
}

// Used to serve RPC queries
func GetBalanceFromState(
	ctx context.Context,
	f ReadState,
	addr codec.Address,
) (uint64, error) {
	k := BalanceKey(addr)
	values, errs := f(ctx, [][]byte{k})
	bal, _, err := innerGetBalance(values[0], errs[0])
	return bal, err
}

func innerGetBalance(
	v []byte,
	err error,
) (uint64, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	val, err := database.ParseUInt64(v)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// SetBalance stores [balance] for [addr]. An account whose balance reaches
// zero is removed.
func SetBalance(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	balance uint64,
) error {
	return setBalance(ctx, mu, BalanceKey(addr), balance)
}

func setBalance(
	ctx context.Context,
	mu state.Mutable,
	key []byte,
	balance uint64,
) error {
	if balance == 0 {
		return mu.Remove(ctx, key)
	}
	return mu.Insert(ctx, key, database.PackUInt64(balance))
}

// AddBalance credits [amount] to [addr] and returns the new balance.
func AddBalance(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	amount uint64,
) (uint64, error) {
	key, bal, _, err := getBalance(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Add(bal, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not add balance (bal=%d, addr=%s, amount=%d)",
			ErrBalanceOverflow,
			bal,
			addr,
			amount,
		)
	}
	return nbal, setBalance(ctx, mu, key, nbal)
}

// SubBalance debits [amount] from [addr] and returns the new balance. It
// never wraps.
func SubBalance(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	amount uint64,
) (uint64, error) {
	key, bal, _, err := getBalance(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Sub(bal, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not subtract balance (bal=%d, addr=%s, amount=%d)",
			ErrInsufficientFunds,
			bal,
			addr,
			amount,
		)
	}
	return nbal, setBalance(ctx, mu, key, nbal)
}

// DebitProgramAccount removes [amount] from an account derived from the
// program id. Only the program can move funds out of its own derived
// accounts, so accounts that could have a private key are rejected.
func DebitProgramAccount(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	amount uint64,
) (uint64, error) {
	if codec.IsOnCurve(addr) {
		return 0, fmt.Errorf("%w: %s", ErrNotProgramAccount, addr)
	}
	return SubBalance(ctx, mu, addr, amount)
}

// CreditAccount adds [amount] to any account.
func CreditAccount(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	amount uint64,
) (uint64, error) {
	return AddBalance(ctx, mu, addr, amount)
}
