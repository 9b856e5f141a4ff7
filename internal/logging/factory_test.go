// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesFile(t *testing.T) {
	require := require.New(t)

	config := NewDefaultConfig()
	config.Directory = t.TempDir()
	config.DisableDisplay = true

	log := New("vault", config)
	log.Info("started")
	log.Stop()

	b, err := os.ReadFile(filepath.Join(config.Directory, "vault.log"))
	require.NoError(err)
	require.Contains(string(b), "started")
}

func TestNoop(t *testing.T) {
	log := NewNoop()
	log.Info("dropped")
	require.False(t, log.Enabled(0))
	n, err := log.Write([]byte("dropped"))
	require.NoError(t, err)
	require.Zero(t, n)
}
