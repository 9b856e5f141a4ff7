// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"errors"

	"github.com/ava-labs/vaultvm/storage"
)

var (
	ErrAlreadyInitialized = errors.New("vault already initialized")
	ErrUnauthorized       = errors.New("unauthorized: signer is not the vault authority")
	ErrInsufficientFunds  = storage.ErrInsufficientFunds
	ErrNotInitialized     = errors.New("vault not initialized")
	ErrBalanceOverflow    = storage.ErrBalanceOverflow
)

// Error codes are stable across releases so that clients can match on them.
const (
	ErrorCodeAlreadyInitialized uint32 = 6000 + iota
	ErrorCodeUnauthorized
	ErrorCodeInsufficientFunds
	ErrorCodeNotInitialized
	ErrorCodeBalanceOverflow
)

var errorCodes = []struct {
	err  error
	code uint32
}{
	{ErrAlreadyInitialized, ErrorCodeAlreadyInitialized},
	{ErrUnauthorized, ErrorCodeUnauthorized},
	{ErrInsufficientFunds, ErrorCodeInsufficientFunds},
	{ErrNotInitialized, ErrorCodeNotInitialized},
	{ErrBalanceOverflow, ErrorCodeBalanceOverflow},
}

// ErrorCode returns the code of [err] or 0 if [err] is not a program error.
func ErrorCode(err error) uint32 {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return 0
}

// CodeError returns the program error with [code].
func CodeError(code uint32) (error, bool) {
	for _, e := range errorCodes {
		if e.code == code {
			return e.err, true
		}
	}
	return nil, false
}
