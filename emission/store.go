// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

//go:generate go run go.uber.org/mock/mockgen -package=emission -destination=mock_store.go . Store

import "context"

// Store persists committed snapshots. Save must be all-or-nothing: when it
// returns an error nothing of [snap] may be visible to a later Load.
//
// Load returns an error wrapping database.ErrNotFound when nothing has been
// saved yet.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
