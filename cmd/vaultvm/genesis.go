// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/genesis"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Writes a genesis file with the default rules",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rawAllocs, err := cmd.Flags().GetStringSlice("alloc")
		if err != nil {
			return err
		}
		allocs, err := parseAllocations(rawAllocs)
		if err != nil {
			return err
		}
		g := genesis.NewDefaultGenesis(allocs)
		if programID, err := cmd.Flags().GetString("program-id"); err == nil && len(programID) > 0 {
			g.Rules.ProgramID, err = codec.ParseAddress(programID)
			if err != nil {
				return fmt.Errorf("failed to parse program id: %w", err)
			}
		}
		if err := g.Verify(); err != nil {
			return err
		}
		b, err := g.Bytes()
		if err != nil {
			return err
		}
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		if len(out) == 0 {
			fmt.Println(string(b))
			return nil
		}
		return os.WriteFile(out, b, perms.ReadWrite)
	},
}

// parseAllocations parses address=lamports pairs.
func parseAllocations(raw []string) ([]*genesis.CustomAllocation, error) {
	allocs := make([]*genesis.CustomAllocation, 0, len(raw))
	for _, r := range raw {
		rawAddr, rawBalance, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid allocation %q: expected address=lamports", r)
		}
		addr, err := codec.ParseAddress(rawAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation %q: %w", r, err)
		}
		balance, err := strconv.ParseUint(rawBalance, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation %q: %w", r, err)
		}
		allocs = append(allocs, &genesis.CustomAllocation{Address: addr, Balance: balance})
	}
	return allocs, nil
}

func init() {
	genesisCmd.Flags().StringSlice("alloc", nil, "Initial balances as address=lamports")
	genesisCmd.Flags().String("program-id", "", "Override the program id")
	genesisCmd.Flags().String("out", "", "File to write (stdout if empty)")
	rootCmd.AddCommand(genesisCmd)
}
