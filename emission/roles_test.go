// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	require := require.New(t)
	for _, role := range []Role{OwnerRole, TimelockOwnerRole} {
		parsed, err := ParseRole(role.String())
		require.NoError(err)
		require.Equal(role, parsed)
	}
	parsed, err := ParseRole(" Timelock-Owner ")
	require.NoError(err)
	require.Equal(TimelockOwnerRole, parsed)

	_, err = ParseRole("admin")
	require.ErrorIs(err, ErrUnknownRole)
	require.Equal("role(9)", Role(9).String())
}

func TestTransferOwnership(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	newOwner := common.HexToAddress("0x00000000000000000000000000000000000000b1")

	// Only the owner can hand the owner role over.
	require.ErrorIs(errOnly(l.TransferOwnership(ctx, timelock, newOwner)), ErrNotRoleHolder)
	require.ErrorIs(errOnly(l.TransferOwnership(ctx, owner, common.Address{})), ErrZeroAddress)
	require.Equal(Active(owner), l.Owner())

	require.NoError(errOnly(l.TransferOwnership(ctx, owner, newOwner)))
	require.Equal(Active(newOwner), l.Owner())

	// The previous owner lost its rights, the new one gained them.
	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(1))), ErrUnauthorized)
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, newOwner, tokens(1))))
}

func TestTransferTimelockOwnership(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	newTimelock := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	require.ErrorIs(errOnly(l.TransferTimelockOwnership(ctx, owner, newTimelock)), ErrNotRoleHolder)
	require.NoError(errOnly(l.TransferTimelockOwnership(ctx, timelock, newTimelock)))
	require.Equal(Active(newTimelock), l.TimelockOwner())
	require.NoError(errOnly(l.SetDecimals(ctx, newTimelock, 6)))
	require.ErrorIs(errOnly(l.SetDecimals(ctx, timelock, 4)), ErrUnauthorized)
}

func TestRenounceOwnershipIsTerminal(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	require.ErrorIs(errOnly(l.RenounceOwnership(ctx, outsider)), ErrNotRoleHolder)
	require.NoError(errOnly(l.RenounceOwnership(ctx, owner)))
	require.Equal(Renounced(owner), l.Owner())
	require.False(l.Owner().Live())

	// The former owner is told why it was refused.
	require.ErrorIs(errOnly(l.SetToMintPercents(ctx, owner, nil, nil)), ErrRoleAlreadyRenounced)
	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(1))), ErrRoleAlreadyRenounced)
	require.ErrorIs(errOnly(l.SetDecimals(ctx, owner, 5)), ErrRoleAlreadyRenounced)
	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(ctx, outsider, tokens(1))), ErrUnauthorized)

	// The role can neither be renounced again nor resurrected.
	require.ErrorIs(errOnly(l.RenounceOwnership(ctx, owner)), ErrRoleAlreadyRenounced)
	require.ErrorIs(errOnly(l.TransferOwnership(ctx, owner, outsider)), ErrRoleAlreadyRenounced)
	require.ErrorIs(errOnly(l.TransferOwnership(ctx, timelock, outsider)), ErrRoleAlreadyRenounced)

	// The timelock role is still live.
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, timelock, tokens(2))))
	require.Equal(tokens(2), l.GetTotalToMintPerBlock())
}

func TestRenounceBothRolesLocksLedger(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{10000})))

	require.NoError(errOnly(l.RenounceTimelockOwnership(ctx, timelock)))
	require.NoError(errOnly(l.RenounceOwnership(ctx, owner)))

	for _, caller := range []common.Address{owner, timelock} {
		require.ErrorIs(errOnly(l.SetToMintPercents(ctx, caller, nil, nil)), ErrRoleAlreadyRenounced)
	}
	require.ErrorIs(errOnly(l.SetToMintPercents(ctx, outsider, nil, nil)), ErrUnauthorized)
	// Readers keep working on the frozen distribution.
	require.Equal([]common.Address{minterA}, l.GetMinters())
}

func TestFormerOwnerHoldingOtherRole(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	// owner also becomes the timelock owner, then renounces the owner role.
	require.NoError(errOnly(l.TransferTimelockOwnership(ctx, timelock, owner)))
	require.NoError(errOnly(l.RenounceOwnership(ctx, owner)))
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(5))))
}

func TestUnknownRole(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.ErrorIs(errOnly(l.RenounceRole(ctx, Role(7), owner)), ErrUnknownRole)
	require.ErrorIs(errOnly(l.TransferRole(ctx, Role(7), owner, outsider)), ErrUnknownRole)
}
