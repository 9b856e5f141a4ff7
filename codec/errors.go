// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrDuplicateItem      = errors.New("duplicate item")
	ErrFieldNotPopulated  = errors.New("field is not populated")
	ErrInsufficientLength = errors.New("insufficient length")
	ErrInvalidSize        = errors.New("invalid size")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidSeeds       = errors.New("invalid seeds")
	ErrOnCurve            = errors.New("address is on the ed25519 curve")
	ErrNoViableBump       = errors.New("unable to find a viable bump seed")
	ErrDiscriminator      = errors.New("discriminator mismatch")
)
