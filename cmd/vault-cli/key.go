// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key and store it in the config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		if err := setConfigValue("key", key.String()); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, keyAddressCmdResponse{
			Address: auth.NewED25519Address(key.PublicKey()).String(),
		})
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print current key address",
	RunE: func(cmd *cobra.Command, _ []string) error {
		factory, err := getFactory(cmd)
		if err != nil {
			return err
		}
		return printValue(cmd, keyAddressCmdResponse{
			Address: factory.Address().String(),
		})
	},
}

type keyAddressCmdResponse struct {
	Address string `json:"address"`
}

func (r keyAddressCmdResponse) String() string {
	return r.Address
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd, keyAddressCmd)
	rootCmd.AddCommand(keyCmd)
}
