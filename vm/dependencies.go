// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"io"

	"github.com/ava-labs/avalanchego/database"
)

// DB is the key/value store holding accounts and results. It is satisfied
// by [github.com/ava-labs/vaultvm/pebble.Database] and by memdb.
type DB interface {
	database.KeyValueReaderWriterDeleter
	database.Batcher
	io.Closer
}

type Config struct {
	// AuthVerificationCores bounds the goroutines verifying signatures of a
	// batch of submitted txs.
	AuthVerificationCores int `json:"authVerificationCores" yaml:"authVerificationCores"`

	// ExecutionCores bounds the goroutines executing a batch of submitted
	// txs.
	ExecutionCores int `json:"executionCores" yaml:"executionCores"`

	// ResultCacheSize is the number of recent results kept in memory.
	ResultCacheSize int `json:"resultCacheSize" yaml:"resultCacheSize"`
}

func NewDefaultConfig() Config {
	return Config{
		AuthVerificationCores: 4,
		ExecutionCores:        4,
		ResultCacheSize:       1_024,
	}
}
