// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helix-labs/feeminter/config"
)

var rootCmd = &cobra.Command{
	Use:          "feeminterd",
	Short:        "Serves a basis-point weighted emission ledger over JSON-RPC",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().String("config", "config.json", "Path to the daemon JSON config")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
