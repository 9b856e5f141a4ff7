// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/mr-tron/base58"
)

const AddressLen = 32

// Address is the 32 byte identity of a ledger account. It is either an
// ed25519 public key or an address derived from a program id (which has no
// private key).
type Address [AddressLen]byte

var EmptyAddress = Address{}

// ToAddress copies [b] into an Address. [b] must be exactly [AddressLen]
// bytes.
func ToAddress(b []byte) (Address, error) {
	if len(b) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: length %d != %d", ErrInvalidAddress, len(b), AddressLen)
	}
	return Address(b), nil
}

// ParseAddress decodes the base58 representation of an address.
func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyAddress, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return ToAddress(b)
}

// MustParseAddress is like [ParseAddress] but panics on malformed input. It
// should only be used for constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// MarshalText returns the base58 representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a base58-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	addr, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
