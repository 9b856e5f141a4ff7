// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Authority Address
}

type testEvent struct {
	User      Address
	Amount    uint64
	Timestamp int64
}

func TestDiscriminators(t *testing.T) {
	require := require.New(t)

	require.Equal(AccountDiscriminator("VaultState"), AccountDiscriminator("VaultState"))
	require.NotEqual(AccountDiscriminator("VaultState"), EventDiscriminator("VaultState"))
	require.NotEqual(EventDiscriminator("DepositEvent"), EventDiscriminator("WithdrawEvent"))
}

func TestRecordRoundTrip(t *testing.T) {
	require := require.New(t)

	d := AccountDiscriminator("VaultState")
	record := testRecord{Authority: Address{1, 2, 3, 4}}
	b, err := MarshalRecord(d, record)
	require.NoError(err)
	require.Len(b, DiscriminatorLen+AddressLen)
	require.Equal(d[:], b[:DiscriminatorLen])
	require.Equal(record.Authority[:], b[DiscriminatorLen:])

	decoded, err := UnmarshalRecord[testRecord](d, b)
	require.NoError(err)
	require.Equal(record, *decoded)
}

func TestEventLayout(t *testing.T) {
	require := require.New(t)

	d := EventDiscriminator("DepositEvent")
	event := testEvent{User: Address{7}, Amount: 1_000, Timestamp: -5}
	b, err := MarshalRecord(d, event)
	require.NoError(err)
	require.Len(b, DiscriminatorLen+AddressLen+8+8)

	amountOffset := DiscriminatorLen + AddressLen
	require.Equal(uint64(1_000), binary.LittleEndian.Uint64(b[amountOffset:]))
	require.Equal(int64(-5), int64(binary.LittleEndian.Uint64(b[amountOffset+8:])))

	decoded, err := UnmarshalRecord[testEvent](d, b)
	require.NoError(err)
	require.Equal(event, *decoded)
}

func TestUnmarshalRecordErrors(t *testing.T) {
	require := require.New(t)

	d := AccountDiscriminator("VaultState")
	_, err := UnmarshalRecord[testRecord](d, []byte{1, 2})
	require.ErrorIs(err, ErrInsufficientLength)

	b, err := MarshalRecord(AccountDiscriminator("Other"), testRecord{})
	require.NoError(err)
	_, err = UnmarshalRecord[testRecord](d, b)
	require.ErrorIs(err, ErrDiscriminator)
}
