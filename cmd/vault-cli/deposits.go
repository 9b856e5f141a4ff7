// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/api/ws"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/indexer"
	"github.com/ava-labs/vaultvm/utils"
)

var depositsCmd = &cobra.Command{
	Use:   "deposits [address]",
	Short: "List indexed deposits, optionally of a single depositor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := codec.EmptyAddress
		if len(args) == 1 {
			parsed, err := codec.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse address: %w", err)
			}
			user = parsed
		}
		follow, err := cmd.Flags().GetBool("follow")
		if err != nil {
			return err
		}
		if follow {
			return followDeposits(cmd, user)
		}

		offset, err := cmd.Flags().GetUint64("offset")
		if err != nil {
			return err
		}
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, _, err := getClient(cmd)
		if err != nil {
			return err
		}
		deposits, err := client.Deposits(ctx, user, offset, limit)
		if err != nil {
			return fmt.Errorf("failed to get deposits: %w", err)
		}
		resp := depositsCmdResponse{Deposits: deposits}
		if user != codec.EmptyAddress {
			summary, err := client.Summary(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to get summary: %w", err)
			}
			resp.Total = &summary.Total
		}
		return printValue(cmd, resp)
	},
}

type depositsCmdResponse struct {
	Deposits []*indexer.Deposit `json:"deposits"`
	Total    *uint64            `json:"total,omitempty"`
}

func (r depositsCmdResponse) String() string {
	var b strings.Builder
	for _, d := range r.Deposits {
		fmt.Fprintf(&b, "#%d %s %s at %s (tx %s)\n",
			d.Seq,
			d.User,
			utils.FormatBalance(d.Amount),
			time.Unix(d.Timestamp, 0).UTC().Format(time.RFC3339),
			d.TxID,
		)
	}
	if r.Total != nil {
		fmt.Fprintf(&b, "total: %s", utils.FormatBalance(*r.Total))
	}
	return strings.TrimSpace(b.String())
}

func followDeposits(cmd *cobra.Command, user codec.Address) error {
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return fmt.Errorf("failed to get endpoint: %w", err)
	}
	cli, err := ws.NewWebSocketClient(endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer cli.Close()

	if err := cli.Subscribe(user); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	utils.Outf("{{green}}listening for deposits{{/}}\n")
	for {
		d, err := cli.ListenDeposit()
		if err != nil {
			return err
		}
		if err := printValue(cmd, depositMessage(*d)); err != nil {
			return err
		}
	}
}

type depositMessage ws.Deposit

func (d depositMessage) String() string {
	return fmt.Sprintf("%s deposited %s (tx %s)", d.User, utils.FormatBalance(d.Amount), d.TxID)
}

func init() {
	depositsCmd.Flags().Bool("follow", false, "Stream new deposits")
	depositsCmd.Flags().Uint64("offset", 0, "Index of the first deposit of the depositor")
	depositsCmd.Flags().Int("limit", 0, "Maximum number of deposits (0 for the server default)")
	rootCmd.AddCommand(depositsCmd)
}
