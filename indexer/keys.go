// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

// Index
// 0x0 => next sequence number
// 0x1/[seq] => deposit
// 0x2/[user] => deposit count
// 0x3/[user]/[n] => seq of the n-th deposit of user
// 0x4/[user] => deposited total
const (
	nextPrefix byte = iota
	depositPrefix
	userCountPrefix
	userDepositPrefix
	userTotalPrefix
)

var nextKey = []byte{nextPrefix}

func depositKey(seq uint64) []byte {
	k := make([]byte, consts.ByteLen+consts.Uint64Len)
	k[0] = depositPrefix
	binary.BigEndian.PutUint64(k[1:], seq)
	return k
}

func userKey(prefix byte, user codec.Address, extra int) []byte {
	k := make([]byte, consts.ByteLen+codec.AddressLen, consts.ByteLen+codec.AddressLen+extra)
	k[0] = prefix
	copy(k[1:], user[:])
	return k
}

func userCountKey(user codec.Address) []byte {
	return userKey(userCountPrefix, user, 0)
}

func userDepositKey(user codec.Address, n uint64) []byte {
	return binary.BigEndian.AppendUint64(userKey(userDepositPrefix, user, consts.Uint64Len), n)
}

func userTotalKey(user codec.Address) []byte {
	return userKey(userTotalPrefix, user, 0)
}

func getUint64(db database.KeyValueReader, key []byte) (uint64, error) {
	b, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return database.ParseUInt64(b)
}
