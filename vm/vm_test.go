// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
	"github.com/ava-labs/vaultvm/event"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/internal/logging"
	"github.com/ava-labs/vaultvm/registry"
)

const (
	now            int64  = 1_700_000_000_000
	initialBalance uint64 = 10_000_000_000
)

type testAccount struct {
	factory *auth.ED25519Factory
	addr    codec.Address
}

func newAccount(t *testing.T) *testAccount {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	factory := auth.NewED25519Factory(priv)
	return &testAccount{factory: factory, addr: factory.Address()}
}

func newGenesis(accounts ...*testAccount) *genesis.Genesis {
	allocs := make([]*genesis.CustomAllocation, 0, len(accounts))
	for _, a := range accounts {
		allocs = append(allocs, &genesis.CustomAllocation{Address: a.addr, Balance: initialBalance})
	}
	return genesis.NewDefaultGenesis(allocs)
}

func newTestVM(t *testing.T, db DB, g *genesis.Genesis) *VM {
	return newTestVMWithConfig(t, NewDefaultConfig(), db, g)
}

func newTestVMWithConfig(t *testing.T, config Config, db DB, g *genesis.Genesis) *VM {
	vm, err := New(context.Background(), config, logging.NewNoop(), trace.Noop, db, g)
	require.NoError(t, err)
	vm.Clock().Set(time.UnixMilli(now))
	return vm
}

func (a *testAccount) tx(t *testing.T, vm *VM, acts ...chain.Action) *chain.Transaction {
	base := &chain.Base{Timestamp: now + 10_000, ChainID: vm.Rules().ChainID}
	tx, err := chain.NewTx(base, acts).Sign(a.factory, registry.Action, registry.Auth)
	require.NoError(t, err)
	return tx
}

func requireBalance(t *testing.T, vm *VM, addr codec.Address, expected uint64) {
	bal, err := vm.Balance(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, expected, bal)
}

func TestVaultScenario(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	authority := newAccount(t)
	user := newAccount(t)
	attacker := newAccount(t)
	recipient := codec.Address{0xaa}
	vm := newTestVM(t, memdb.New(), newGenesis(authority, user, attacker))
	vault := vm.VaultAddress()

	// Authority creates the vault
	result, err := vm.Submit(ctx, authority.tx(t, vm, &actions.Initialize{}))
	require.NoError(err)
	require.True(result.Success, result.Error)
	cost, err := vm.Rules().StorageCost(40)
	require.NoError(err)
	requireBalance(t, vm, authority.addr, initialBalance-cost)
	requireBalance(t, vm, vm.StateAddress(), cost)
	vs, exists, err := vm.VaultState(ctx)
	require.NoError(err)
	require.True(exists)
	require.Equal(authority.addr, vs.Authority)

	// User deposits
	result, err = vm.Submit(ctx, user.tx(t, vm, &actions.Deposit{Amount: 1_000_000}))
	require.NoError(err)
	require.True(result.Success, result.Error)
	require.Len(result.Events, 1)
	deposit, err := actions.ParseDepositEvent(result.Events[0])
	require.NoError(err)
	require.Equal(&actions.DepositEvent{User: user.addr, Amount: 1_000_000, Timestamp: now / 1_000}, deposit)
	requireBalance(t, vm, user.addr, initialBalance-1_000_000)
	requireBalance(t, vm, vault, 1_000_000)

	// Authority pays out
	result, err = vm.Submit(ctx, authority.tx(t, vm, &actions.Withdraw{To: recipient, Amount: 400_000}))
	require.NoError(err)
	require.True(result.Success, result.Error)
	requireBalance(t, vm, recipient, 400_000)
	requireBalance(t, vm, vault, 600_000)

	// Anyone else is refused
	result, err = vm.Submit(ctx, attacker.tx(t, vm, &actions.Withdraw{To: attacker.addr, Amount: 600_000}))
	require.NoError(err)
	require.False(result.Success)
	require.Equal(actions.ErrorCodeUnauthorized, result.ErrorCode)
	requireBalance(t, vm, vault, 600_000)
	requireBalance(t, vm, attacker.addr, initialBalance)

	// Second initialize keeps the authority
	result, err = vm.Submit(ctx, attacker.tx(t, vm, &actions.Initialize{}))
	require.NoError(err)
	require.False(result.Success)
	require.Equal(actions.ErrorCodeAlreadyInitialized, result.ErrorCode)
	vs, _, err = vm.VaultState(ctx)
	require.NoError(err)
	require.Equal(authority.addr, vs.Authority)

	// Withdrawing more than the vault holds fails
	result, err = vm.Submit(ctx, authority.tx(t, vm, &actions.Withdraw{To: recipient, Amount: 600_001}))
	require.NoError(err)
	require.Equal(actions.ErrorCodeInsufficientFunds, result.ErrorCode)
	requireBalance(t, vm, vault, 600_000)
	requireBalance(t, vm, recipient, 400_000)
}

func TestWithdrawBeforeInitialize(t *testing.T) {
	require := require.New(t)

	authority := newAccount(t)
	vm := newTestVM(t, memdb.New(), newGenesis(authority))
	result, err := vm.Submit(context.Background(), authority.tx(t, vm, &actions.Withdraw{To: authority.addr, Amount: 1}))
	require.NoError(err)
	require.False(result.Success)
	require.Equal(actions.ErrorCodeNotInitialized, result.ErrorCode)
}

func TestRejectedTxs(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	user := newAccount(t)
	vm := newTestVM(t, memdb.New(), newGenesis(user))

	tx := user.tx(t, vm, &actions.Deposit{Amount: 1})
	_, err := vm.Submit(ctx, tx)
	require.NoError(err)
	_, err = vm.Submit(ctx, tx)
	require.ErrorIs(err, chain.ErrDuplicateTx)

	// Failed txs consume their id as well
	failed := user.tx(t, vm, &actions.Deposit{Amount: initialBalance + 1})
	result, err := vm.Submit(ctx, failed)
	require.NoError(err)
	require.False(result.Success)
	_, err = vm.Submit(ctx, failed)
	require.ErrorIs(err, chain.ErrDuplicateTx)

	// Forged signature
	forged := user.tx(t, vm, &actions.Deposit{Amount: 2})
	forged.Auth.(*auth.ED25519).Signature[0] ^= 0xff
	_, err = vm.Submit(ctx, forged)
	require.ErrorIs(err, chain.ErrAuthFailed)

	// Expired
	expired := user.tx(t, vm, &actions.Deposit{Amount: 3})
	vm.Clock().Set(time.UnixMilli(now + 20_000))
	_, err = vm.Submit(ctx, expired)
	require.ErrorIs(err, chain.ErrTimestampTooLate)

	requireBalance(t, vm, user.addr, initialBalance-1)
}

func TestMinimumBalance(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	user := newAccount(t)
	vm := newTestVM(t, memdb.New(), newGenesis(user))
	minimum := vm.Rules().MinAccountBalance

	result, err := vm.Submit(ctx, user.tx(t, vm, &actions.Deposit{Amount: initialBalance - minimum + 1}))
	require.NoError(err)
	require.Equal(actions.ErrorCodeInsufficientFunds, result.ErrorCode)

	result, err = vm.Submit(ctx, user.tx(t, vm, &actions.Deposit{Amount: initialBalance}))
	require.NoError(err)
	require.True(result.Success, result.Error)
	requireBalance(t, vm, user.addr, 0)
	requireBalance(t, vm, vm.VaultAddress(), initialBalance)
}

func TestConcurrentDeposits(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	const (
		users    = 16
		deposits = 8
	)
	accounts := make([]*testAccount, users)
	for i := range accounts {
		accounts[i] = newAccount(t)
	}
	vm := newTestVM(t, memdb.New(), newGenesis(accounts...))

	txs := make([]*chain.Transaction, 0, users*deposits)
	for _, account := range accounts {
		for j := 0; j < deposits; j++ {
			txs = append(txs, account.tx(t, vm, &actions.Deposit{Amount: uint64(1_000 + j)}))
		}
	}
	var (
		wg      sync.WaitGroup
		results = make([]*chain.Result, len(txs))
		errs    = make([]error, len(txs))
	)
	for i, tx := range txs {
		wg.Add(1)
		go func(i int, tx *chain.Transaction) {
			defer wg.Done()
			results[i], errs[i] = vm.Submit(ctx, tx)
		}(i, tx)
	}
	wg.Wait()
	for i := range txs {
		require.NoError(errs[i])
		require.True(results[i].Success, results[i].Error)
	}

	perUser := uint64(0)
	for j := 0; j < deposits; j++ {
		perUser += uint64(1_000 + j)
	}
	for _, account := range accounts {
		requireBalance(t, vm, account.addr, initialBalance-perUser)
	}
	requireBalance(t, vm, vm.VaultAddress(), users*perUser)
	require.Zero(vm.locks.Locks())
}

func TestSubmitTxs(t *testing.T) {
	for _, cores := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("cores=%d", cores), func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			accounts := make([]*testAccount, 6)
			for i := range accounts {
				accounts[i] = newAccount(t)
			}
			config := NewDefaultConfig()
			config.ExecutionCores = cores
			vm := newTestVMWithConfig(t, config, memdb.New(), newGenesis(accounts...))

			txs := make([]*chain.Transaction, len(accounts))
			for i, account := range accounts {
				txs[i] = account.tx(t, vm, &actions.Deposit{Amount: 5_000})
			}
			txs[2].Auth.(*auth.ED25519).Signature[10] ^= 0x01

			results, errs := vm.SubmitTxs(ctx, txs)
			for i := range txs {
				if i == 2 {
					require.ErrorIs(errs[i], chain.ErrAuthFailed)
					require.Nil(results[i])
					continue
				}
				require.NoError(errs[i])
				require.True(results[i].Success)
			}
			requireBalance(t, vm, vm.VaultAddress(), 5*5_000)
			requireBalance(t, vm, accounts[2].addr, initialBalance)
		})
	}
}

func TestResultsAndSubscriptions(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	user := newAccount(t)
	db := memdb.New()
	g := newGenesis(user)
	vm := newTestVM(t, db, g)

	var (
		l        sync.Mutex
		received []*chain.Result
	)
	unsubscribe := vm.Subscribe(event.SubscriptionFunc[*chain.Result]{
		AcceptF: func(_ context.Context, result *chain.Result) error {
			l.Lock()
			defer l.Unlock()
			received = append(received, result)
			return nil
		},
	})

	tx := user.tx(t, vm, &actions.Deposit{Amount: 7})
	result, err := vm.Submit(ctx, tx)
	require.NoError(err)
	require.Len(received, 1)
	require.Equal(result, received[0])

	stored, err := vm.GetResult(tx.ID())
	require.NoError(err)
	require.Equal(result, stored)

	require.NoError(unsubscribe())
	_, err = vm.Submit(ctx, user.tx(t, vm, &actions.Deposit{Amount: 8}))
	require.NoError(err)
	require.Len(received, 1)

	// A second instance over the same database reads results from disk
	reloaded := newTestVM(t, db, g)
	stored, err = reloaded.GetResult(tx.ID())
	require.NoError(err)
	require.Equal(result, stored)
	requireBalance(t, reloaded, user.addr, initialBalance-15)

	_, err = reloaded.GetResult(ids.GenerateTestID())
	require.ErrorIs(err, ErrResultNotFound)
}

func TestGenesisMismatch(t *testing.T) {
	db := memdb.New()
	newTestVM(t, db, newGenesis(newAccount(t)))

	_, err := New(context.Background(), NewDefaultConfig(), logging.NewNoop(), trace.Noop, db, newGenesis(newAccount(t)))
	require.ErrorIs(t, err, ErrGenesisMismatch)
}

func TestClose(t *testing.T) {
	require := require.New(t)

	user := newAccount(t)
	vm := newTestVM(t, memdb.New(), newGenesis(user))
	tx := user.tx(t, vm, &actions.Deposit{Amount: 1})
	require.NoError(vm.Close())
	require.ErrorIs(vm.Close(), ErrClosed)

	_, err := vm.Submit(context.Background(), tx)
	require.ErrorIs(err, ErrClosed)
}
