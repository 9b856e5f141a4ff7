// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/utils"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Inspect the vault",
}

var vaultInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the vault addresses, authority and balance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, _, err := getClient(cmd)
		if err != nil {
			return err
		}
		networkID, chainID, _, err := client.Network(ctx)
		if err != nil {
			return fmt.Errorf("failed to get network info: %w", err)
		}
		addrs, err := client.VaultAddress(ctx)
		if err != nil {
			return fmt.Errorf("failed to get vault address: %w", err)
		}
		state, initialized, balance, err := client.VaultState(ctx)
		if err != nil {
			return fmt.Errorf("failed to get vault state: %w", err)
		}
		resp := vaultInfoCmdResponse{
			NetworkID:   networkID,
			ChainID:     chainID,
			ProgramID:   addrs.Program,
			Vault:       addrs.Vault,
			State:       addrs.State,
			Initialized: initialized,
			Balance:     balance,
		}
		if initialized {
			resp.Authority = &state.Authority
		}
		return printValue(cmd, resp)
	},
}

type vaultInfoCmdResponse struct {
	NetworkID   uint32         `json:"networkId"`
	ChainID     ids.ID         `json:"chainId"`
	ProgramID   codec.Address  `json:"programId"`
	Vault       codec.Address  `json:"vault"`
	State       codec.Address  `json:"state"`
	Initialized bool           `json:"initialized"`
	Authority   *codec.Address `json:"authority,omitempty"`
	Balance     uint64         `json:"balance"`
}

func (r vaultInfoCmdResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "network: %d\nchain: %s\nprogram: %s\n", r.NetworkID, r.ChainID, r.ProgramID)
	fmt.Fprintf(&b, "vault: %s\nstate: %s\n", r.Vault, r.State)
	if r.Authority != nil {
		fmt.Fprintf(&b, "authority: %s\n", r.Authority)
	} else {
		b.WriteString("authority: not initialized\n")
	}
	fmt.Fprintf(&b, "balance: %s (%d lamports)", utils.FormatBalance(r.Balance), r.Balance)
	return b.String()
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Print the balance of an address (defaults to the current key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var addr codec.Address
		if len(args) == 1 {
			parsed, err := codec.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse address: %w", err)
			}
			addr = parsed
		} else {
			factory, err := getFactory(cmd)
			if err != nil {
				return err
			}
			addr = factory.Address()
		}

		client, _, err := getClient(cmd)
		if err != nil {
			return err
		}
		balance, err := client.Balance(ctx, addr)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		return printValue(cmd, balanceCmdResponse{Address: addr, Balance: balance})
	},
}

type balanceCmdResponse struct {
	Address codec.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

func (r balanceCmdResponse) String() string {
	return fmt.Sprintf("%s: %s (%d lamports)", r.Address, utils.FormatBalance(r.Balance), r.Balance)
}

func init() {
	vaultCmd.AddCommand(vaultInfoCmd)
	rootCmd.AddCommand(vaultCmd, balanceCmd)
}
