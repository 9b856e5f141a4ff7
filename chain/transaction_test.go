// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/chain/chaintest"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
	"github.com/ava-labs/vaultvm/internal/logging"
	"github.com/ava-labs/vaultvm/registry"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/tstate"
)

const now int64 = 1_700_000_000_000

func newFactory(t *testing.T) *auth.ED25519Factory {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return auth.NewED25519Factory(priv)
}

func signTx(t *testing.T, factory chain.AuthFactory, base *chain.Base, acts ...chain.Action) *chain.Transaction {
	tx, err := chain.NewTx(base, acts).Sign(factory, registry.Action, registry.Auth)
	require.NoError(t, err)
	return tx
}

func TestSignAndParse(t *testing.T) {
	require := require.New(t)

	rules := chaintest.NewDefaultRules()
	parser := registry.NewParser(rules)
	factory := newFactory(t)
	recipient := codec.Address{9}

	tx := signTx(t, factory, &chain.Base{Timestamp: now, ChainID: rules.ChainID},
		&actions.Deposit{Amount: 10},
		&actions.Withdraw{To: recipient, Amount: 5},
	)
	require.NoError(tx.Verify(context.Background()))
	require.Equal(factory.Address(), tx.Actor())
	require.Equal(now, tx.Expiry())
	require.Len(tx.Bytes(), tx.Size())

	parsed, err := chain.ParseTx(tx.Bytes(), parser)
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.Bytes(), parsed.Bytes())
	require.Len(parsed.Actions, 2)
	require.Equal(&actions.Withdraw{To: recipient, Amount: 5}, parsed.Actions[1])
	require.NoError(parsed.Verify(context.Background()))

	// Trailing bytes
	_, err = chain.ParseTx(append(tx.Bytes(), 0), parser)
	require.ErrorIs(err, chain.ErrInvalidObject)

	// Tampered deposit amount
	b := append([]byte{}, tx.Bytes()...)
	b[chain.BaseSize+2]++
	tampered, err := chain.ParseTx(b, parser)
	require.NoError(err)
	require.ErrorIs(tampered.Verify(context.Background()), chain.ErrAuthFailed)
}

func TestParseChainID(t *testing.T) {
	for _, chainID := range []ids.ID{ids.Empty, ids.GenerateTestID()} {
		t.Run(chainID.String(), func(t *testing.T) {
			require := require.New(t)

			rules := chaintest.NewDefaultRules()
			rules.ChainID = chainID
			tx := signTx(t, newFactory(t), &chain.Base{Timestamp: now, ChainID: chainID}, &actions.Initialize{})

			parsed, err := chain.ParseTx(tx.Bytes(), registry.NewParser(rules))
			require.NoError(err)
			require.Equal(chainID, parsed.Base.ChainID)
			require.NoError(parsed.Base.Execute(chainID, rules, now))
		})
	}
}

func TestParseUnknownAction(t *testing.T) {
	require := require.New(t)

	rules := chaintest.NewDefaultRules()
	tx := signTx(t, newFactory(t), &chain.Base{Timestamp: now}, &actions.Initialize{})
	b := append([]byte{}, tx.Bytes()...)
	b[chain.BaseSize+1] = 0xff
	_, err := chain.ParseTx(b, registry.NewParser(rules))
	require.ErrorIs(err, chain.ErrInvalidActionID)
}

func TestPreExecute(t *testing.T) {
	rules := chaintest.NewDefaultRules()
	rules.MaxActionsPerTx = 2
	chainID := ids.GenerateTestID()
	rules.ChainID = chainID

	tests := []struct {
		name    string
		base    *chain.Base
		actions []chain.Action
		err     error
	}{
		{
			name:    "valid",
			base:    &chain.Base{Timestamp: now, ChainID: chainID},
			actions: []chain.Action{&actions.Initialize{}},
		},
		{
			name:    "misaligned",
			base:    &chain.Base{Timestamp: now + 1, ChainID: chainID},
			actions: []chain.Action{&actions.Initialize{}},
			err:     chain.ErrMisalignedTime,
		},
		{
			name:    "expired",
			base:    &chain.Base{Timestamp: now - 1_000, ChainID: chainID},
			actions: []chain.Action{&actions.Initialize{}},
			err:     chain.ErrTimestampTooLate,
		},
		{
			name:    "too far in the future",
			base:    &chain.Base{Timestamp: now + rules.ValidityWindow + 1_000, ChainID: chainID},
			actions: []chain.Action{&actions.Initialize{}},
			err:     chain.ErrTimestampTooEarly,
		},
		{
			name:    "wrong chain",
			base:    &chain.Base{Timestamp: now, ChainID: ids.Empty},
			actions: []chain.Action{&actions.Initialize{}},
			err:     chain.ErrInvalidChainID,
		},
		{
			name: "no actions",
			base: &chain.Base{Timestamp: now, ChainID: chainID},
			err:  chain.ErrNoActions,
		},
		{
			name: "too many actions",
			base: &chain.Base{Timestamp: now, ChainID: chainID},
			actions: []chain.Action{
				&actions.Deposit{Amount: 1},
				&actions.Deposit{Amount: 2},
				&actions.Deposit{Amount: 3},
			},
			err: chain.ErrTooManyActions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := chain.NewTx(tt.base, tt.actions)
			require.ErrorIs(t, tx.PreExecute(rules, now), tt.err)
		})
	}
}

func loadView(t *testing.T, ts *tstate.TState, store *chaintest.InMemoryStore, tx *chain.Transaction, programID codec.Address) *tstate.TStateView {
	stateKeys, err := tx.StateKeys(programID)
	require.NoError(t, err)
	values := make(map[string][]byte, len(stateKeys))
	for k := range stateKeys {
		if v, ok := store.Storage[k]; ok {
			values[k] = v
		}
	}
	return ts.NewView(stateKeys, values)
}

type writer struct {
	*chaintest.InMemoryStore
}

func (w writer) Put(key []byte, value []byte) error {
	w.Storage[string(key)] = value
	return nil
}

func (w writer) Delete(key []byte) error {
	delete(w.Storage, string(key))
	return nil
}

func TestExecuteRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewDefaultRules()
	parser := registry.NewParser(rules)
	vault := storage.VaultAddress(rules.ProgramID)
	factory := newFactory(t)
	actor := factory.Address()

	store := chaintest.NewInMemoryStore()
	require.NoError(storage.SetBalance(ctx, store, actor, 1_000))
	require.NoError(storage.SetVaultState(ctx, store, storage.StateAddress(rules.ProgramID), &storage.VaultState{Authority: codec.Address{7}}))

	// The deposit succeeds but the withdraw is not signed by the authority
	tx := signTx(t, factory, &chain.Base{Timestamp: now},
		&actions.Deposit{Amount: 400},
		&actions.Withdraw{To: actor, Amount: 400},
	)
	ts := tstate.New(4)
	view := loadView(t, ts, store, tx, rules.ProgramID)
	result := tx.Execute(ctx, parser, view, now)
	require.False(result.Success)
	require.Equal(actions.ErrorCodeUnauthorized, result.ErrorCode)
	require.Contains(result.Error, actions.ErrUnauthorized.Error())
	require.Len(result.Logs, 2)
	require.Empty(result.Events)
	require.Zero(view.PendingChanges())

	bal, err := storage.GetBalance(ctx, view, actor)
	require.NoError(err)
	require.Equal(uint64(1_000), bal)
	bal, err = storage.GetBalance(ctx, view, vault)
	require.NoError(err)
	require.Zero(bal)
}

func TestExecuteCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	rules := chaintest.NewDefaultRules()
	parser := registry.NewParser(rules)
	vault := storage.VaultAddress(rules.ProgramID)
	factory := newFactory(t)
	actor := factory.Address()

	store := chaintest.NewInMemoryStore()
	require.NoError(storage.SetBalance(ctx, store, actor, 1_000))

	tx := signTx(t, factory, &chain.Base{Timestamp: now},
		&actions.Initialize{},
		&actions.Deposit{Amount: 400},
		&actions.Withdraw{To: actor, Amount: 100},
	)
	ts := tstate.New(4)
	view := loadView(t, ts, store, tx, rules.ProgramID)
	result := tx.Execute(ctx, parser, view, now)
	require.True(result.Success, result.Error)
	require.Equal(tx.ID(), result.TxID)
	require.Equal(actor, result.Actor)
	require.Len(result.Events, 1)
	require.True(actions.IsDepositEvent(result.Events[0]))
	view.Commit()

	require.NotEmpty(ts.ChangedKeys())
	_, err := ts.WriteTo(ctx, trace.Noop, writer{store})
	require.NoError(err)

	bal, err := storage.GetBalance(ctx, store, actor)
	require.NoError(err)
	require.Equal(uint64(700), bal)
	bal, err = storage.GetBalance(ctx, store, vault)
	require.NoError(err)
	require.Equal(uint64(300), bal)
	vs, exists, err := storage.GetVaultState(ctx, store, storage.StateAddress(rules.ProgramID))
	require.NoError(err)
	require.True(exists)
	require.Equal(actor, vs.Authority)

	// Results survive a round trip through their encoding
	b, err := result.Bytes()
	require.NoError(err)
	parsed, err := chain.ParseResult(b)
	require.NoError(err)
	require.Equal(result, parsed)
}

func TestValidityWindow(t *testing.T) {
	require := require.New(t)

	window := chain.NewTimeValidityWindow(logging.NewNoop())
	tx := signTx(t, newFactory(t), &chain.Base{Timestamp: now}, &actions.Deposit{Amount: 1})

	require.NoError(window.Accept(tx, now-1_000))
	require.ErrorIs(window.Accept(tx, now-1_000), chain.ErrDuplicateTx)
	require.ErrorIs(window.Accept(tx, now), chain.ErrDuplicateTx)
	require.Equal(1, window.Len())

	// Once expired the id is forgotten
	require.NoError(window.Accept(tx, now+1_000))
}
