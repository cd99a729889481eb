// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/helix-labs/feeminter/emission"
)

var _ Ledger = (*emission.Ledger)(nil)

// Ledger is the part of [emission.Ledger] exposed over the API. Mutators
// return the version they committed.
type Ledger interface {
	Snapshot() *emission.Snapshot
	GetToMintPerBlock(minter common.Address) *uint256.Int

	SetToMintPercents(ctx context.Context, caller common.Address, minters []common.Address, percents []uint16) (uint64, error)
	SetTotalToMintPerBlock(ctx context.Context, caller common.Address, total *uint256.Int) (uint64, error)
	SetDecimals(ctx context.Context, caller common.Address, decimals uint8) (uint64, error)
	Reconfigure(
		ctx context.Context,
		caller common.Address,
		total *uint256.Int,
		decimals uint8,
		minters []common.Address,
		percents []uint16,
	) (uint64, error)
	TransferRole(ctx context.Context, role emission.Role, caller, newHolder common.Address) (uint64, error)
	RenounceRole(ctx context.Context, role emission.Role, caller common.Address) (uint64, error)
}

// Backend is what API handler factories are built from.
type Backend interface {
	Ledger() Ledger
	Logger() logging.Logger
}
