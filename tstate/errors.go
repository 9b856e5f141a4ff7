// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import "errors"

var (
	ErrInvalidKeyOrPermission = errors.New("key is not declared or lacks permission")
	ErrInvalidKeyValue        = errors.New("value does not fit under key")
	ErrAllocationDisabled     = errors.New("allocation disabled")
)
