// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

var programAddressMarker = []byte("ProgramDerivedAddress")

// IsOnCurve reports whether [a] decodes to a point on the ed25519 curve
// (and could therefore have a private key).
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// CreateProgramAddress derives the address of [seeds] under [programID].
//
// The address is sha256(seeds || programID || "ProgramDerivedAddress") and
// is rejected with [ErrOnCurve] if it is a valid ed25519 public key.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return EmptyAddress, fmt.Errorf("%w: %d seeds > %d", ErrInvalidSeeds, len(seeds), MaxSeeds)
	}
	size := AddressLen + len(programAddressMarker)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return EmptyAddress, fmt.Errorf("%w: seed length %d > %d", ErrInvalidSeeds, len(seed), MaxSeedLen)
		}
		size += len(seed)
	}
	preimage := make([]byte, 0, size)
	for _, seed := range seeds {
		preimage = append(preimage, seed...)
	}
	preimage = append(preimage, programID[:]...)
	preimage = append(preimage, programAddressMarker...)

	addr := Address(hashing.ComputeHash256Array(preimage))
	if IsOnCurve(addr) {
		return EmptyAddress, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress returns the first off-curve address of [seeds] under
// [programID], appending a bump seed that counts down from 255.
//
// Anyone holding the same seeds and program id derives the same address,
// so callers never need to trust an address supplied by another party.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return EmptyAddress, 0, fmt.Errorf("%w: %d seeds leaves no room for a bump", ErrInvalidSeeds, len(seeds))
	}
	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)
	for bump := 255; bump >= 0; bump-- {
		bumped[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(bumped, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrOnCurve):
			continue
		default:
			return EmptyAddress, 0, err
		}
	}
	return EmptyAddress, 0, ErrNoViableBump
}
