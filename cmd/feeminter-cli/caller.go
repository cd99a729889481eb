// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helix-labs/feeminter/codec"
)

var callerCmd = &cobra.Command{
	Use:   "caller",
	Short: "Print the caller address mutations are sent from",
	RunE: func(cmd *cobra.Command, _ []string) error {
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		return printValue(cmd, callerCmdResponse{
			Caller: caller.Hex(),
		})
	},
}

var callerSetCmd = &cobra.Command{
	Use:   "set [address]",
	Short: "Set the default caller address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := codec.ParseAddress(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse caller %q: %w", args[0], err)
		}
		if err := setConfigValue("caller", caller.Hex()); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, callerCmdResponse{
			Caller: caller.Hex(),
		})
	},
}

type callerCmdResponse struct {
	Caller string `json:"caller"`
}

func (r callerCmdResponse) String() string {
	return r.Caller
}

func init() {
	rootCmd.AddCommand(callerCmd)
	callerCmd.AddCommand(callerSetCmd)
}
