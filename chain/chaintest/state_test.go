// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreClone(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	store := NewInMemoryStore()
	require.NoError(store.Insert(ctx, []byte("a"), []byte{1}))

	clone := store.Clone()
	require.NoError(clone.Insert(ctx, []byte("b"), []byte{2}))
	require.NoError(clone.Remove(ctx, []byte("a")))

	v, err := store.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte{1}, v)
	_, err = store.GetValue(ctx, []byte("b"))
	require.ErrorIs(err, database.ErrNotFound)

	_, err = clone.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
}
