// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrBalanceOverflow    = errors.New("balance overflow")
	ErrNotProgramAccount  = errors.New("account is not program derived")
	ErrInvalidRecordBytes = errors.New("invalid record bytes")
)
