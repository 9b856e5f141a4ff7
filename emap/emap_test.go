// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

type testTx struct {
	id ids.ID
	t  int64
}

func (tx *testTx) ID() ids.ID    { return tx.id }
func (tx *testTx) Expiry() int64 { return tx.t }

func TestEmapAddAny(t *testing.T) {
	require := require.New(t)

	e := NewEMap[*testTx]()
	tx := &testTx{id: ids.GenerateTestID(), t: 10}
	require.False(e.Any([]*testTx{tx}))

	e.Add([]*testTx{tx, tx})
	require.True(e.Any([]*testTx{tx}))
	require.Equal(1, e.Len())
}

func TestEmapSetMin(t *testing.T) {
	require := require.New(t)

	e := NewEMap[*testTx]()
	early1 := &testTx{id: ids.GenerateTestID(), t: 5}
	early2 := &testTx{id: ids.GenerateTestID(), t: 5}
	mid := &testTx{id: ids.GenerateTestID(), t: 7}
	late := &testTx{id: ids.GenerateTestID(), t: 20}
	e.Add([]*testTx{late, early1, mid, early2})

	evicted := e.SetMin(7)
	require.ElementsMatch([]ids.ID{early1.id, early2.id}, evicted)
	require.False(e.Any([]*testTx{early1, early2}))
	require.True(e.Any([]*testTx{mid}))

	evicted = e.SetMin(21)
	require.ElementsMatch([]ids.ID{mid.id, late.id}, evicted)
	require.Zero(e.Len())

	// Evicted items can be re-added
	e.Add([]*testTx{early1})
	require.True(e.Any([]*testTx{early1}))
}
