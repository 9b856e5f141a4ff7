// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/state"
)

var (
	_ state.Mutable   = (*InMemoryStore)(nil)
	_ state.Immutable = (*InMemoryStore)(nil)
)

// InMemoryStore is an in-memory implementation of `state.Mutable`
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	i.Storage[string(key)] = value
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(i.Storage, string(key))
	return nil
}

// Clone returns a copy of the store.
func (i *InMemoryStore) Clone() *InMemoryStore {
	c := NewInMemoryStore()
	for k, v := range i.Storage {
		c.Storage[k] = v
	}
	return c
}
