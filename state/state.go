// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"io"

	"github.com/ava-labs/avalanchego/database"
)

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Database is the durable backend a [SimpleMutable] commits into. Both
// avalanchego's memdb and this repository's pebble wrapper satisfy it.
type Database interface {
	database.KeyValueReader
	database.Batcher
	io.Closer
}
