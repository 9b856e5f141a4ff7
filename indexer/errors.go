// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import "errors"

var (
	ErrNotFound      = errors.New("deposit not found")
	ErrCorruptRecord = errors.New("corrupt deposit record")
)
