// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/utils"
)

var errCanceled = errors.New("canceled")

func execute(cmd *cobra.Command, action chain.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	factory, err := getFactory(cmd)
	if err != nil {
		return err
	}
	client, _, err := getClient(cmd)
	if err != nil {
		return err
	}
	result, err := client.Execute(ctx, []chain.Action{action}, factory)
	if err != nil {
		return fmt.Errorf("failed to submit tx: %w", err)
	}
	return printValue(cmd, txResponse{
		TxID:      result.TxID,
		Success:   result.Success,
		Error:     result.Error,
		ErrorCode: result.ErrorCode,
		Logs:      result.Logs,
	})
}

type txResponse struct {
	TxID      ids.ID   `json:"txId"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
	ErrorCode uint32   `json:"errorCode,omitempty"`
	Logs      []string `json:"logs"`
}

func (r txResponse) String() string {
	var result strings.Builder
	if r.Success {
		result.WriteString(fmt.Sprintf("✅ Transaction successful (txID: %s)\n", r.TxID))
	} else {
		result.WriteString(fmt.Sprintf("❌ Transaction failed (txID: %s): %s (code %d)\n", r.TxID, r.Error, r.ErrorCode))
	}
	for _, log := range r.Logs {
		result.WriteString("  " + log + "\n")
	}
	return strings.TrimSpace(result.String())
}

func getAmount(cmd *cobra.Command) (uint64, error) {
	raw, err := cmd.Flags().GetString("amount")
	if err != nil {
		return 0, err
	}
	return utils.ParseBalance(raw)
}

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create the vault with the current key as authority",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return execute(cmd, &actions.Initialize{})
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit into the vault",
	RunE: func(cmd *cobra.Command, _ []string) error {
		amount, err := getAmount(cmd)
		if err != nil {
			return fmt.Errorf("failed to parse amount: %w", err)
		}
		return execute(cmd, &actions.Deposit{Amount: amount})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw from the vault (authority only)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		amount, err := getAmount(cmd)
		if err != nil {
			return fmt.Errorf("failed to parse amount: %w", err)
		}
		rawTo, err := cmd.Flags().GetString("to")
		if err != nil {
			return err
		}
		to, err := codec.ParseAddress(rawTo)
		if err != nil {
			return fmt.Errorf("failed to parse recipient: %w", err)
		}

		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return err
		}
		if !yes {
			utils.Outf(
				"{{yellow}}withdrawing{{/}} %s {{yellow}}to{{/}} %s\n",
				utils.FormatBalance(amount),
				to,
			)
			cont, err := prompt.Continue()
			if err != nil {
				return err
			}
			if !cont {
				return errCanceled
			}
		}
		return execute(cmd, &actions.Withdraw{To: to, Amount: amount})
	},
}

func init() {
	depositCmd.Flags().String("amount", "", "Amount in tokens (9 decimals)")
	withdrawCmd.Flags().String("amount", "", "Amount in tokens (9 decimals)")
	withdrawCmd.Flags().String("to", "", "Recipient address")
	withdrawCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	for _, c := range []*cobra.Command{depositCmd, withdrawCmd} {
		if err := c.MarkFlagRequired("amount"); err != nil {
			panic(err)
		}
	}
	if err := withdrawCmd.MarkFlagRequired("to"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(initializeCmd, depositCmd, withdrawCmd)
}
