// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"bytes"

	"github.com/ava-labs/vaultvm/codec"
)

var DepositEventDiscriminator = codec.EventDiscriminator("DepositEvent")

// DepositEvent is emitted for every successful deposit. Timestamp is in unix
// seconds.
type DepositEvent struct {
	User      codec.Address `json:"user"`
	Amount    uint64        `json:"amount"`
	Timestamp int64         `json:"timestamp"`
}

func (e *DepositEvent) Bytes() ([]byte, error) {
	return codec.MarshalRecord(DepositEventDiscriminator, *e)
}

// IsDepositEvent returns whether [b] starts with the deposit event
// discriminator.
func IsDepositEvent(b []byte) bool {
	return bytes.HasPrefix(b, DepositEventDiscriminator[:])
}

func ParseDepositEvent(b []byte) (*DepositEvent, error) {
	return codec.UnmarshalRecord[DepositEvent](DepositEventDiscriminator, b)
}
