// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "github.com/helix-labs/feeminter/consts"

// Key prefixes
const (
	totalPrefix byte = iota
	decimalsPrefix
	mintersPrefix
	ownerPrefix
	timelockOwnerPrefix
	versionPrefix
)

const (
	// LedgerNamespace is the sub-directory of the data directory that holds
	// the ledger database.
	LedgerNamespace = "ledgerdb"

	holderLen = consts.AddressLen + consts.BoolLen
	shareLen  = consts.AddressLen + consts.Uint16Len
)
