// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"
)

// TState collects the committed changes of one or more views before they
// are written to the database.
type TState struct {
	l           sync.RWMutex
	ops         int
	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState. [changedSize] is an estimate of the
// number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// OpIndex returns the number of operations committed to ts.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// ChangedKeys returns every key committed to ts.
func (ts *TState) ChangedKeys() []string {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return maps.Keys(ts.changedKeys)
}

// WriteTo copies all committed changes into [batch] and returns the number
// of keys written. The batch is not flushed.
func (ts *TState) WriteTo(
	ctx context.Context,
	t trace.Tracer, //nolint:interfacer
	batch database.KeyValueWriterDeleter,
) (int, error) {
	_, span := t.Start(ctx, "TState.WriteTo")
	defer span.End()

	ts.l.RLock()
	defer ts.l.RUnlock()

	for key, value := range ts.changedKeys {
		if value.IsNothing() {
			if err := batch.Delete([]byte(key)); err != nil {
				return 0, err
			}
			continue
		}
		if err := batch.Put([]byte(key), value.Value()); err != nil {
			return 0, err
		}
	}
	return len(ts.changedKeys), nil
}
