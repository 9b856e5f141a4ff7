// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import "errors"

var ErrMissingSigner = errors.New("transfer source did not sign")
