// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/keys"
	"github.com/ava-labs/vaultvm/state"
)

var (
	testVal = []byte("value")
	key1    = keys.EncodeChunks([]byte("key1"), 1)
	key1str = string(key1)
	key2    = keys.EncodeChunks([]byte("key2"), 2)
	key2str = string(key2)
)

func TestScope(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	// No Scope
	tsv := ts.NewView(state.Keys{}, map[string][]byte{})
	val, err := tsv.GetValue(ctx, key1)
	require.ErrorIs(err, ErrInvalidKeyOrPermission)
	require.Nil(val)
	require.ErrorIs(tsv.Insert(ctx, key1, testVal), ErrInvalidKeyOrPermission)
	require.ErrorIs(tsv.Remove(ctx, key1), ErrInvalidKeyOrPermission)
}

func TestPermissions(t *testing.T) {
	tests := []struct {
		name      string
		perm      state.Permissions
		stored    bool
		getErr    error
		insertErr error
		removeErr error
	}{
		{name: "read only existing", perm: state.Read, stored: true, insertErr: ErrInvalidKeyOrPermission, removeErr: ErrInvalidKeyOrPermission},
		{name: "write existing", perm: state.Write, stored: true},
		{name: "write missing", perm: state.Write, getErr: database.ErrNotFound, insertErr: ErrInvalidKeyOrPermission},
		{name: "allocate missing", perm: state.Allocate, getErr: database.ErrNotFound, removeErr: ErrInvalidKeyOrPermission},
		{name: "allocate existing", perm: state.Allocate, stored: true, insertErr: ErrInvalidKeyOrPermission, removeErr: ErrInvalidKeyOrPermission},
		{name: "all missing", perm: state.All, getErr: database.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.TODO()
			storage := map[string][]byte{}
			if tt.stored {
				storage[key1str] = testVal
			}
			tsv := New(1).NewView(state.Keys{key1str: tt.perm}, storage)

			_, err := tsv.GetValue(ctx, key1)
			require.ErrorIs(err, tt.getErr)
			require.ErrorIs(tsv.Insert(ctx, key1, []byte("new")), tt.insertErr)

			tsv = New(1).NewView(state.Keys{key1str: tt.perm}, storage)
			require.ErrorIs(tsv.Remove(ctx, key1), tt.removeErr)
		})
	}
}

func TestInsertNew(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.All}, map[string][]byte{})

	tsv.DisableAllocation()
	require.ErrorIs(tsv.Insert(ctx, key1, testVal), ErrAllocationDisabled)
	tsv.EnableAllocation()

	require.NoError(tsv.Insert(ctx, key1, testVal))
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(1, tsv.OpIndex())
	require.Equal(testVal, val)

	tsv.Commit()
	require.Equal(1, ts.OpIndex())
	require.Equal([]string{key1str}, ts.ChangedKeys())
}

func TestInsertInvalid(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	key := keys.EncodeChunks([]byte("hello"), 0)
	tsv := ts.NewView(state.Keys{string(key): state.All}, map[string][]byte{})
	require.ErrorIs(tsv.Insert(ctx, key, []byte("cool")), ErrInvalidKeyValue)
	_, err := tsv.GetValue(ctx, key)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestInsertRemoveRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)

	tsv := ts.NewView(state.Keys{key1str: state.All, key2str: state.All}, map[string][]byte{key1str: testVal})

	// Update existing, create new, remove existing
	require.NoError(tsv.Insert(ctx, key1, []byte("blah")))
	require.NoError(tsv.Insert(ctx, key2, testVal))
	require.NoError(tsv.Remove(ctx, key1))
	require.Equal(3, tsv.OpIndex())
	_, err := tsv.GetValue(ctx, key1)
	require.ErrorIs(err, database.ErrNotFound)

	// Rollback remove
	tsv.Rollback(ctx, 2)
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal([]byte("blah"), val)

	// Rollback everything
	tsv.Rollback(ctx, 0)
	require.Zero(tsv.OpIndex())
	require.Zero(tsv.PendingChanges())
	val, err = tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)
	_, err = tsv.GetValue(ctx, key2)
	require.ErrorIs(err, database.ErrNotFound)

	// Remove missing key is a no-op
	require.NoError(tsv.Remove(ctx, key2))
	require.Zero(tsv.OpIndex())
}

func TestRollbackAfterCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	ts := New(10)
	scope := state.Keys{key1str: state.All}

	tsv := ts.NewView(scope, map[string][]byte{})
	require.NoError(tsv.Insert(ctx, key1, testVal))
	tsv.Commit()

	// A second view sees the committed value and restores it on rollback
	tsv = ts.NewView(scope, map[string][]byte{})
	require.NoError(tsv.Insert(ctx, key1, []byte("next")))
	tsv.Rollback(ctx, 0)
	val, err := tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)

	// Removing a committed key and rolling back restores it
	require.NoError(tsv.Remove(ctx, key1))
	tsv.Rollback(ctx, 0)
	val, err = tsv.GetValue(ctx, key1)
	require.NoError(err)
	require.Equal(testVal, val)
}

func TestWriteTo(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()
	db := memdb.New()
	require.NoError(db.Put(key2, []byte("old")))

	ts := New(10)
	tsv := ts.NewView(state.Keys{key1str: state.All, key2str: state.All}, map[string][]byte{key2str: []byte("old")})
	require.NoError(tsv.Insert(ctx, key1, testVal))
	require.NoError(tsv.Remove(ctx, key2))
	tsv.Commit()

	batch := db.NewBatch()
	n, err := ts.WriteTo(ctx, trace.Noop, batch)
	require.NoError(err)
	require.Equal(2, n)

	// Nothing is visible until the batch is written
	has, err := db.Has(key1)
	require.NoError(err)
	require.False(has)

	require.NoError(batch.Write())
	val, err := db.Get(key1)
	require.NoError(err)
	require.Equal(testVal, val)
	_, err = db.Get(key2)
	require.ErrorIs(err, database.ErrNotFound)
}
