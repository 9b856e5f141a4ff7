// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ava-labs/vaultvm/api/jsonrpc"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error getting home directory:", err)
		os.Exit(1)
	}

	configDir := filepath.Join(homeDir, ".vault-cli")
	if err := os.MkdirAll(configDir, perms.ReadWriteExecute); err != nil {
		fmt.Fprintln(os.Stderr, "Error creating config directory:", err)
		os.Exit(1)
	}

	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.OpenFile(configFile, os.O_CREATE|os.O_WRONLY, perms.ReadWrite)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error creating config file:", err)
			os.Exit(1)
		}
		_ = f.Close()
	}

	// Set config name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
		// Config file not found; will be created when needed
	}
}

func isJSONOutputRequested(cmd *cobra.Command) (bool, error) {
	output, err := getConfigValue(cmd, "output", false)
	if err != nil {
		return false, fmt.Errorf("failed to get output format: %w", err)
	}
	return strings.ToLower(output) == "json", nil
}

func printValue(cmd *cobra.Command, v fmt.Stringer) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}

	if isJSON {
		jsonBytes, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}
	fmt.Println(v.String())
	return nil
}

func getConfigValue(cmd *cobra.Command, key string, required bool) (string, error) {
	// Check flags first
	if value, err := cmd.Flags().GetString(key); err == nil && value != "" {
		return value, nil
	}

	// Then check viper
	if value := viper.GetString(key); value != "" {
		return value, nil
	}

	if required {
		return "", fmt.Errorf("required value for %s not found", key)
	}

	return "", nil
}

func setConfigValue(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

func getFactory(cmd *cobra.Command) (*auth.ED25519Factory, error) {
	keyString, err := getConfigValue(cmd, "key", true)
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	key, err := ed25519.ParsePrivateKey(strings.TrimSpace(keyString))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	return auth.NewED25519Factory(key), nil
}

func getClient(cmd *cobra.Command) (*jsonrpc.JSONRPCClient, string, error) {
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get endpoint: %w", err)
	}
	return jsonrpc.NewJSONRPCClient(endpoint), endpoint, nil
}
