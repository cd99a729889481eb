// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/helix-labs/feeminter/codec"
	"github.com/helix-labs/feeminter/emission"
	"github.com/helix-labs/feeminter/utils"
)

var (
	errInvalidMinterEntry = errors.New("minter entries must look like <address>=<percent>")
	errInvalidDecimals    = errors.New("decimals must be a non-negative integer")
	errAborted            = errors.New("aborted")
)

type mutationCmdResponse struct {
	Operation string `json:"operation"`
	Version   uint64 `json:"version"`
}

func (r mutationCmdResponse) String() string {
	return fmt.Sprintf("%s committed at version %d", r.Operation, r.Version)
}

func printMutation(cmd *cobra.Command, op string, version uint64) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}
	if isJSON {
		return printValue(cmd, mutationCmdResponse{Operation: op, Version: version})
	}
	utils.Outf("{{green}}%s{{/}} committed at version {{cyan}}%d{{/}}\n", op, version)
	return nil
}

var setPercentsCmd = &cobra.Command{
	Use:   "set-percents",
	Short: "Replace the whole distribution",
	Long: `Replace the whole distribution. Every minter missing from the list stops
receiving emission. Percents are converted using the ledger's current decimals,
e.g. --minter 0xabc...=62.5 --minter 0xdef...=37.5`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := cmd.Flags().GetStringArray("minter")
		if err != nil {
			return err
		}
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		snap, err := client.Snapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get decimals: %w", err)
		}
		minters, shares, err := parseMinterPercents(entries, snap.Decimals)
		if err != nil {
			return err
		}
		version, err := client.SetToMintPercents(cmd.Context(), caller, minters, shares)
		if err != nil {
			return fmt.Errorf("failed to set percents: %w", err)
		}
		return printMutation(cmd, "setToMintPercents", version)
	},
}

var setTotalCmd = &cobra.Command{
	Use:   "set-total [amount]",
	Short: "Set the total emitted per block, in tokens (or base units with --raw)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return err
		}
		total, err := parseAmount(args[0], raw)
		if err != nil {
			return err
		}
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		version, err := client.SetTotalToMintPerBlock(cmd.Context(), caller, total)
		if err != nil {
			return fmt.Errorf("failed to set total: %w", err)
		}
		return printMutation(cmd, "setTotalToMintPerBlock", version)
	},
}

var setDecimalsCmd = &cobra.Command{
	Use:   "set-decimals [decimals]",
	Short: "Change the share precision without rescaling existing shares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals, err := parseDecimals(args[0])
		if err != nil {
			return err
		}
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		version, err := client.SetDecimals(cmd.Context(), caller, decimals)
		if err != nil {
			return fmt.Errorf("failed to set decimals: %w", err)
		}
		return printMutation(cmd, "setDecimals", version)
	},
}

var reconfigureCmd = &cobra.Command{
	Use:   "reconfigure [total]",
	Short: "Set total, decimals and distribution in one commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return err
		}
		total, err := parseAmount(args[0], raw)
		if err != nil {
			return err
		}
		decimals, err := cmd.Flags().GetUint8("decimals")
		if err != nil {
			return err
		}
		entries, err := cmd.Flags().GetStringArray("minter")
		if err != nil {
			return err
		}
		minters, shares, err := parseMinterPercents(entries, decimals)
		if err != nil {
			return err
		}
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		version, err := client.Reconfigure(cmd.Context(), caller, total, decimals, minters, shares)
		if err != nil {
			return fmt.Errorf("failed to reconfigure: %w", err)
		}
		return printMutation(cmd, "reconfigure", version)
	},
}

var transferOwnershipCmd = &cobra.Command{
	Use:   "transfer-ownership [new owner]",
	Short: "Hand a role over to another account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := getRole(cmd)
		if err != nil {
			return err
		}
		newOwner, err := codec.ParseAddress(args[0])
		if err != nil {
			return fmt.Errorf("failed to parse new owner %q: %w", args[0], err)
		}
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		version, err := client.TransferOwnership(cmd.Context(), role, caller, newOwner)
		if err != nil {
			return fmt.Errorf("failed to transfer %s: %w", role, err)
		}
		return printMutation(cmd, "transferOwnership", version)
	},
}

var renounceOwnershipCmd = &cobra.Command{
	Use:   "renounce-ownership",
	Short: "Give up a role for good",
	RunE: func(cmd *cobra.Command, _ []string) error {
		role, err := getRole(cmd)
		if err != nil {
			return err
		}
		caller, err := getCaller(cmd)
		if err != nil {
			return err
		}
		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return err
		}
		if !yes {
			if err := confirm(fmt.Sprintf("Renounce the %s role of %s? This cannot be undone", role, caller.Hex())); err != nil {
				return err
			}
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		version, err := client.RenounceOwnership(cmd.Context(), role, caller)
		if err != nil {
			return fmt.Errorf("failed to renounce %s: %w", role, err)
		}
		return printMutation(cmd, "renounceOwnership", version)
	},
}

func confirm(label string) error {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return errAborted
		}
		return err
	}
	return nil
}

// parseMinterPercents turns "<address>=<percent>" entries into the arguments
// of a full-replace update.
func parseMinterPercents(entries []string, decimals uint8) ([]common.Address, []uint16, error) {
	minters := make([]common.Address, len(entries))
	percents := make([]string, len(entries))
	for i, e := range entries {
		addr, percent, ok := strings.Cut(e, "=")
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", errInvalidMinterEntry, e)
		}
		m, err := codec.ParseAddress(addr)
		if err != nil {
			return nil, nil, fmt.Errorf("minter %q: %w", addr, err)
		}
		minters[i] = m
		percents[i] = percent
	}
	shares, err := emission.ToBasisPoints(percents, decimals)
	if err != nil {
		return nil, nil, err
	}
	return minters, shares, nil
}

func parseAmount(s string, raw bool) (*uint256.Int, error) {
	var decimals uint8 = utils.TokenDecimals
	if raw {
		decimals = 0
	}
	v, err := utils.ParseUnits(s, decimals)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	return v, nil
}

func parseDecimals(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("%w: %s > %d", emission.ErrDecimalsTooLarge, s, emission.MaxDecimals)
	case err != nil:
		return 0, fmt.Errorf("%w: %q", errInvalidDecimals, s)
	case v > uint64(emission.MaxDecimals):
		return 0, fmt.Errorf("%w: %d > %d", emission.ErrDecimalsTooLarge, v, emission.MaxDecimals)
	}
	return uint8(v), nil
}

func getRole(cmd *cobra.Command) (emission.Role, error) {
	s, err := cmd.Flags().GetString("role")
	if err != nil {
		return 0, err
	}
	return emission.ParseRole(s)
}

func init() {
	rootCmd.AddCommand(
		setPercentsCmd,
		setTotalCmd,
		setDecimalsCmd,
		reconfigureCmd,
		transferOwnershipCmd,
		renounceOwnershipCmd,
	)

	for _, cmd := range []*cobra.Command{setPercentsCmd, reconfigureCmd} {
		cmd.Flags().StringArray("minter", nil, "Minter and percent as <address>=<percent>, repeatable")
	}
	for _, cmd := range []*cobra.Command{setTotalCmd, reconfigureCmd} {
		cmd.Flags().Bool("raw", false, "Interpret the amount as base units instead of tokens")
	}
	reconfigureCmd.Flags().Uint8("decimals", emission.DefaultDecimals, "Share precision of the new distribution")
	for _, cmd := range []*cobra.Command{transferOwnershipCmd, renounceOwnershipCmd} {
		cmd.Flags().String("role", emission.OwnerRole.String(), "Role to act on (owner or timelock)")
	}
	renounceOwnershipCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}
