// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

// Packed sizes of the fixed-width values the ledger persists.
const (
	ByteLen    = 1
	BoolLen    = 1
	Uint16Len  = 2
	IntLen     = 4
	Uint64Len  = 8
	AddressLen = 20
	Uint256Len = 32

	MaxUint16 = ^uint16(0)
)
