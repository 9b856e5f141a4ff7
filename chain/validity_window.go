// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/emap"
)

// TimeValidityWindow remembers the ids of executed transactions until their
// expiry passes so that a signed transaction can only be executed once.
type TimeValidityWindow struct {
	log logging.Logger

	lock sync.Mutex
	seen *emap.EMap[*Transaction]
}

func NewTimeValidityWindow(log logging.Logger) *TimeValidityWindow {
	return &TimeValidityWindow{
		log:  log,
		seen: emap.NewEMap[*Transaction](),
	}
}

// Accept marks [tx] as executed and evicts every transaction that expired
// before [timestamp]. It returns [ErrDuplicateTx] if [tx] was already
// accepted.
func (v *TimeValidityWindow) Accept(tx *Transaction, timestamp int64) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	evicted := v.seen.SetMin(timestamp)
	if len(evicted) > 0 {
		v.log.Debug("txs evicted from seen", zap.Int("len", len(evicted)))
	}
	if v.seen.Any([]*Transaction{tx}) {
		return ErrDuplicateTx
	}
	v.seen.Add([]*Transaction{tx})
	return nil
}

// Len returns the number of transactions tracked.
func (v *TimeValidityWindow) Len() int {
	return v.seen.Len()
}
