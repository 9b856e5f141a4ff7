// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package indexer stores the deposit events of accepted transactions so
// they can be queried per depositor.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/event"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

var _ event.Subscription[*chain.Result] = (*Indexer)(nil)

type DB interface {
	database.KeyValueReaderWriterDeleter
	database.Batcher
	io.Closer
}

// Deposit is an indexed [actions.DepositEvent].
type Deposit struct {
	Seq       uint64        `json:"seq"`
	TxID      ids.ID        `json:"txId"`
	User      codec.Address `json:"user"`
	Amount    uint64        `json:"amount"`
	Timestamp int64         `json:"timestamp"`
}

const depositSize = consts.Uint64Len + consts.IDLen + codec.AddressLen + consts.Uint64Len + consts.Int64Len

func (d *Deposit) bytes() []byte {
	p := codec.NewWriter(depositSize, depositSize)
	p.PackUint64(d.Seq)
	p.PackID(d.TxID)
	p.PackAddress(d.User)
	p.PackUint64(d.Amount)
	p.PackInt64(d.Timestamp)
	return p.Bytes()
}

func parseDeposit(b []byte) (*Deposit, error) {
	p := codec.NewReader(b, depositSize)
	var d Deposit
	d.Seq = p.UnpackUint64(false)
	p.UnpackID(true, &d.TxID)
	p.UnpackAddress(&d.User)
	d.Amount = p.UnpackUint64(false)
	d.Timestamp = p.UnpackInt64(false)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrCorruptRecord
	}
	return &d, nil
}

// Indexer consumes [chain.Result]s. Successful results carrying deposit
// events are written in the order they are accepted.
type Indexer struct {
	log logging.Logger
	db  DB

	l    sync.RWMutex
	next uint64
}

func New(log logging.Logger, db DB) (*Indexer, error) {
	next, err := getUint64(db, nextKey)
	if err != nil {
		return nil, err
	}
	log.Info("loaded deposit index", zap.Uint64("deposits", next))
	return &Indexer{log: log, db: db, next: next}, nil
}

func (i *Indexer) Accept(_ context.Context, result *chain.Result) error {
	if !result.Success {
		return nil
	}

	i.l.Lock()
	defer i.l.Unlock()

	batch := i.db.NewBatch()
	next := i.next
	totals := map[codec.Address]uint64{}
	counts := map[codec.Address]uint64{}
	for _, b := range result.Events {
		if !actions.IsDepositEvent(b) {
			continue
		}
		e, err := actions.ParseDepositEvent(b)
		if err != nil {
			return fmt.Errorf("%w: tx=%s", err, result.TxID)
		}
		d := &Deposit{
			Seq:       next,
			TxID:      result.TxID,
			User:      e.User,
			Amount:    e.Amount,
			Timestamp: e.Timestamp,
		}
		if err := batch.Put(depositKey(next), d.bytes()); err != nil {
			return err
		}

		count, ok := counts[e.User]
		if !ok {
			count, err = getUint64(i.db, userCountKey(e.User))
			if err != nil {
				return err
			}
		}
		if err := batch.Put(userDepositKey(e.User, count), database.PackUInt64(next)); err != nil {
			return err
		}
		counts[e.User] = count + 1

		total, ok := totals[e.User]
		if !ok {
			total, err = getUint64(i.db, userTotalKey(e.User))
			if err != nil {
				return err
			}
		}
		total, err = smath.Add(total, e.Amount)
		if err != nil {
			return err
		}
		totals[e.User] = total
		next++
	}
	if next == i.next {
		return nil
	}

	for user, count := range counts {
		if err := batch.Put(userCountKey(user), database.PackUInt64(count)); err != nil {
			return err
		}
	}
	for user, total := range totals {
		if err := batch.Put(userTotalKey(user), database.PackUInt64(total)); err != nil {
			return err
		}
	}
	if err := batch.Put(nextKey, database.PackUInt64(next)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	i.log.Debug("indexed deposits",
		zap.Stringer("txID", result.TxID),
		zap.Uint64("count", next-i.next),
	)
	i.next = next
	return nil
}

// Count is the number of indexed deposits.
func (i *Indexer) Count() uint64 {
	i.l.RLock()
	defer i.l.RUnlock()

	return i.next
}

// Get returns the deposit with sequence number [seq].
func (i *Indexer) Get(seq uint64) (*Deposit, error) {
	b, err := i.db.Get(depositKey(seq))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return parseDeposit(b)
}

// Latest returns up to [limit] deposits, newest first, skipping the
// [offset] newest.
func (i *Indexer) Latest(offset uint64, limit int) ([]*Deposit, error) {
	i.l.RLock()
	defer i.l.RUnlock()

	if offset >= i.next {
		return []*Deposit{}, nil
	}
	start := i.next - offset
	deposits := make([]*Deposit, 0, min(uint64(limit), start))
	for seq := start; seq > 0 && len(deposits) < limit; seq-- {
		d, err := i.Get(seq - 1)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

// Deposits returns up to [limit] deposits of [user] starting at its
// [offset]-th deposit, oldest first.
func (i *Indexer) Deposits(user codec.Address, offset uint64, limit int) ([]*Deposit, error) {
	i.l.RLock()
	defer i.l.RUnlock()

	count, err := getUint64(i.db, userCountKey(user))
	if err != nil {
		return nil, err
	}
	deposits := []*Deposit{}
	for n := offset; n < count && len(deposits) < limit; n++ {
		seq, err := getUint64(i.db, userDepositKey(user, n))
		if err != nil {
			return nil, err
		}
		d, err := i.Get(seq)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, nil
}

// Summary is the deposit history of a single depositor.
type Summary struct {
	User  codec.Address `json:"user"`
	Count uint64        `json:"count"`
	Total uint64        `json:"total"`
}

func (i *Indexer) Summary(user codec.Address) (*Summary, error) {
	i.l.RLock()
	defer i.l.RUnlock()

	count, err := getUint64(i.db, userCountKey(user))
	if err != nil {
		return nil, err
	}
	total, err := getUint64(i.db, userTotalKey(user))
	if err != nil {
		return nil, err
	}
	return &Summary{User: user, Count: count, Total: total}, nil
}

func (i *Indexer) Close() error {
	return i.db.Close()
}
