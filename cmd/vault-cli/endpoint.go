// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		return printValue(cmd, endpointCmdResponse{
			Endpoint: endpoint,
		})
	},
}

type endpointCmdResponse struct {
	Endpoint string `json:"endpoint"`
}

func (r endpointCmdResponse) String() string {
	return r.Endpoint
}

var endpointSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the endpoint URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := cmd.Flags().GetString("endpoint")
		if err != nil {
			return fmt.Errorf("failed to get endpoint flag: %w", err)
		}

		if endpoint == "" {
			return errors.New("endpoint is required")
		}

		if err := setConfigValue("endpoint", endpoint); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}

		return printValue(cmd, endpointSetCmdResponse{
			Endpoint: endpoint,
		})
	},
}

type endpointSetCmdResponse struct {
	Endpoint string `json:"endpoint"`
}

func (r endpointSetCmdResponse) String() string {
	return "Endpoint set to: " + r.Endpoint
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the endpoint is reachable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, endpoint, err := getClient(cmd)
		if err != nil {
			return err
		}
		ok, err := client.Ping(ctx)
		if err != nil {
			return fmt.Errorf("failed to ping %s: %w", endpoint, err)
		}
		return printValue(cmd, pingCmdResponse{Endpoint: endpoint, Success: ok})
	},
}

type pingCmdResponse struct {
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
}

func (r pingCmdResponse) String() string {
	return fmt.Sprintf("%s: success=%t", r.Endpoint, r.Success)
}

func init() {
	endpointCmd.AddCommand(endpointSetCmd, pingCmd)
	rootCmd.AddCommand(endpointCmd)

	endpointSetCmd.Flags().String("endpoint", "", "Endpoint URL to set")
	err := endpointSetCmd.MarkFlagRequired("endpoint")
	if err != nil {
		log.Fatalf("failed to mark endpoint flag as required: %s", err)
	}
}
