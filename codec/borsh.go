// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/near/borsh-go"
)

const DiscriminatorLen = 8

// Discriminator is the 8 byte prefix that identifies the kind of a record
// or event. It is the first 8 bytes of sha256("<namespace>:<Name>").
type Discriminator [DiscriminatorLen]byte

func newDiscriminator(namespace, name string) Discriminator {
	h := hashing.ComputeHash256([]byte(namespace + ":" + name))
	return Discriminator(h[:DiscriminatorLen])
}

// AccountDiscriminator returns the prefix stored in front of an account
// record named [name].
func AccountDiscriminator(name string) Discriminator {
	return newDiscriminator("account", name)
}

// EventDiscriminator returns the prefix emitted in front of an event named
// [name].
func EventDiscriminator(name string) Discriminator {
	return newDiscriminator("event", name)
}

// MarshalRecord serializes [value] with borsh behind discriminator [d].
func MarshalRecord[T any](d Discriminator, value T) ([]byte, error) {
	body, err := borsh.Serialize(value)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, DiscriminatorLen+len(body))
	b = append(b, d[:]...)
	return append(b, body...), nil
}

// UnmarshalRecord checks the discriminator of [data] and deserializes the
// remaining bytes with borsh.
func UnmarshalRecord[T any](d Discriminator, data []byte) (*T, error) {
	if len(data) < DiscriminatorLen {
		return nil, fmt.Errorf("%w: record is %d bytes", ErrInsufficientLength, len(data))
	}
	if !bytes.Equal(data[:DiscriminatorLen], d[:]) {
		return nil, ErrDiscriminator
	}
	result := new(T)
	if err := borsh.Deserialize(result, data[DiscriminatorLen:]); err != nil {
		return nil, err
	}
	return result, nil
}
