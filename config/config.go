// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/vaultvm/internal/logging"
	"github.com/ava-labs/vaultvm/pebble"
	"github.com/ava-labs/vaultvm/pubsub"
	"github.com/ava-labs/vaultvm/trace"
	"github.com/ava-labs/vaultvm/vm"
)

type Config struct {
	// DataDir holds the state database, the deposit index, and the logs.
	DataDir string `json:"dataDir" yaml:"dataDir"`

	// GenesisFile is read on every start. The default genesis is used if it
	// is empty.
	GenesisFile string `json:"genesisFile" yaml:"genesisFile"`
	NetworkID   uint32 `json:"networkID" yaml:"networkID"`
	ChainID     string `json:"chainID" yaml:"chainID"`

	HTTPHost          string        `json:"httpHost" yaml:"httpHost"`
	HTTPPort          uint16        `json:"httpPort" yaml:"httpPort"`
	AllowedOrigins    []string      `json:"allowedOrigins" yaml:"allowedOrigins"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	StoreDeposits bool `json:"storeDeposits" yaml:"storeDeposits"`

	Streaming pubsub.ServerConfig `json:"streaming" yaml:"streaming"`

	VM     vm.Config      `json:"vm" yaml:"vm"`
	Pebble pebble.Config  `json:"pebble" yaml:"pebble"`
	Log    logging.Config `json:"log" yaml:"log"`
	Trace  trace.Config   `json:"trace" yaml:"trace"`
}

func NewDefaultConfig() Config {
	return Config{
		DataDir:           "~/.vaultvm",
		NetworkID:         1,
		HTTPHost:          "127.0.0.1",
		HTTPPort:          9650,
		AllowedOrigins:    []string{"*"},
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		StoreDeposits:     true,
		Streaming:         pubsub.NewDefaultServerConfig(),
		VM:                vm.NewDefaultConfig(),
		Pebble:            pebble.NewDefaultConfig(),
		Log:               logging.NewDefaultConfig(),
		Trace:             trace.NewDefaultConfig(),
	}
}

// Load reads the config at [path] on top of [NewDefaultConfig]. Files
// ending in .yaml or .yml are parsed as YAML and everything else as JSON.
func Load(path string) (Config, error) {
	c := NewDefaultConfig()
	if len(path) == 0 {
		return c, c.Verify()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(b, &c)
	default:
		err = json.Unmarshal(b, &c)
	}
	if err != nil {
		return c, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return c, c.Verify()
}

func (c *Config) Verify() error {
	if len(c.DataDir) == 0 {
		return fmt.Errorf("%w: empty data directory", ErrInvalidConfig)
	}
	if _, err := c.GetChainID(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Streaming.MaxPendingMessages <= 0 {
		return fmt.Errorf("%w: streaming max pending messages must be positive", ErrInvalidConfig)
	}
	if c.Streaming.PingPeriod >= c.Streaming.PongWait {
		return fmt.Errorf("%w: streaming ping period must be less than pong wait", ErrInvalidConfig)
	}
	return nil
}

// GetChainID parses [ChainID]. The empty ID is returned if it is not set, in
// which case the node derives the chain ID from its genesis.
func (c *Config) GetChainID() (ids.ID, error) {
	if len(c.ChainID) == 0 {
		return ids.Empty, nil
	}
	return ids.FromString(c.ChainID)
}

// GetDataDir expands a leading ~ of [DataDir].
func (c *Config) GetDataDir() (string, error) {
	if c.DataDir != "~" && !strings.HasPrefix(c.DataDir, "~/") {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(c.DataDir, "~")), nil
}

func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}
