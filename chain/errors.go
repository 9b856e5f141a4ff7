// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	// Parsing errors
	ErrInvalidObject   = errors.New("invalid object")
	ErrInvalidActionID = errors.New("invalid action type id")
	ErrInvalidAuthID   = errors.New("invalid auth type id")
	ErrNoActions       = errors.New("no actions")
	ErrTooManyActions  = errors.New("too many actions")

	// Verification errors
	ErrMisalignedTime    = errors.New("misaligned time")
	ErrTimestampTooLate  = errors.New("timestamp too late")
	ErrTimestampTooEarly = errors.New("timestamp too early")
	ErrInvalidChainID    = errors.New("invalid chain id")
	ErrDuplicateTx       = errors.New("duplicate transaction")
	ErrInvalidKeyValue   = errors.New("invalid key or value")
	ErrAuthFailed        = errors.New("auth failed")
)
