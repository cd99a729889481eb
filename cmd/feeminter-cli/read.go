// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/helix-labs/feeminter/api/jsonrpc"
	"github.com/helix-labs/feeminter/codec"
	"github.com/helix-labs/feeminter/emission"
	"github.com/helix-labs/feeminter/utils"
)

var rateCmd = &cobra.Command{
	Use:   "rate [minter]",
	Short: "Print the amount a minter receives per block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minter, err := codec.ParseAddress(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse minter %q: %w", args[0], err)
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		amount, share, decimals, err := client.ToMintPerBlock(cmd.Context(), minter)
		if err != nil {
			return fmt.Errorf("failed to get rate: %w", err)
		}
		return printValue(cmd, rateCmdResponse{
			Minter:   minter.Hex(),
			Amount:   amount.ToBig().String(),
			Tokens:   utils.FormatUnits(amount, utils.TokenDecimals),
			Percent:  emission.FormatPercent(share, decimals),
			Share:    share,
			Decimals: decimals,
		})
	},
}

type rateCmdResponse struct {
	Minter   string `json:"minter"`
	Amount   string `json:"amount"`
	Tokens   string `json:"tokens"`
	Percent  string `json:"percent"`
	Share    uint16 `json:"share"`
	Decimals uint8  `json:"decimals"`
}

func (r rateCmdResponse) String() string {
	return fmt.Sprintf("%s per block (%s%%)", r.Tokens, r.Percent)
}

var mintersCmd = &cobra.Command{
	Use:   "minters",
	Short: "List registered minters in registration order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		minters, err := client.Minters(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get minters: %w", err)
		}
		return printValue(cmd, mintersCmdResponse{
			Minters: utils.Map(func(m common.Address) string { return m.Hex() }, minters),
		})
	},
}

type mintersCmdResponse struct {
	Minters []string `json:"minters"`
}

func (r mintersCmdResponse) String() string {
	return strings.Join(r.Minters, "\n")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the full ledger configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		snap, err := client.Snapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get snapshot: %w", err)
		}
		return printValue(cmd, snapshotCmdResponse{snap})
	},
}

type snapshotCmdResponse struct {
	*jsonrpc.SnapshotReply
}

func (r snapshotCmdResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "version:        %d\n", r.Version)
	fmt.Fprintf(&b, "total/block:    %s\n", formatAmount(r.TotalPerBlock))
	fmt.Fprintf(&b, "decimals:       %d\n", r.Decimals)
	fmt.Fprintf(&b, "owner:          %s\n", r.Owner)
	fmt.Fprintf(&b, "timelock owner: %s\n", r.TimelockOwner)
	fmt.Fprintf(&b, "minters:        %d", len(r.Minters))
	for _, m := range r.Minters {
		fmt.Fprintf(&b, "\n  %s %8s%% %s", m.Address.Hex(), m.Percent, formatAmount(m.PerBlock))
	}
	return b.String()
}

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "Print the owner and timelock owner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		owner, timelock, err := client.Owners(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get owners: %w", err)
		}
		return printValue(cmd, ownersCmdResponse{
			Owner:         owner,
			TimelockOwner: timelock,
		})
	},
}

type ownersCmdResponse struct {
	Owner         emission.Holder `json:"owner"`
	TimelockOwner emission.Holder `json:"timelockOwner"`
}

func (r ownersCmdResponse) String() string {
	return fmt.Sprintf("owner: %s\ntimelock owner: %s", r.Owner, r.TimelockOwner)
}

// formatAmount renders base units as tokens, falling back to the raw value.
func formatAmount(s string) string {
	v, err := utils.ParseUnits(s, 0)
	if err != nil {
		return s
	}
	return utils.FormatUnits(v, utils.TokenDecimals)
}

func init() {
	rootCmd.AddCommand(rateCmd, mintersCmd, snapshotCmd, ownersCmd)
}
