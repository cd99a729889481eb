// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"
)

var errWriteFailed = errors.New("write failed")

// failingDB accepts every batch operation but refuses to write the batch.
type failingDB struct {
	*memdb.Database
}

func (f failingDB) NewBatch() database.Batch {
	return failingBatch{f.Database.NewBatch()}
}

type failingBatch struct {
	database.Batch
}

func (failingBatch) Write() error {
	return errWriteFailed
}

func TestSimpleMutableReadYourWrites(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()
	require.NoError(db.Put([]byte("a"), []byte("1")))

	mu := NewSimpleMutable(db)
	v, err := mu.GetValue(ctx, []byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)

	require.NoError(mu.Insert(ctx, []byte("b"), []byte("2")))
	require.NoError(mu.Remove(ctx, []byte("a")))
	require.Equal(2, mu.Len())

	_, err = mu.GetValue(ctx, []byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err = mu.GetValue(ctx, []byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)

	// Nothing reaches the database before Commit.
	has, err := db.Has([]byte("b"))
	require.NoError(err)
	require.False(has)
	has, err = db.Has([]byte("a"))
	require.NoError(err)
	require.True(has)
}

func TestSimpleMutableCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()
	require.NoError(db.Put([]byte("a"), []byte("1")))

	mu := NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("b"), []byte("2")))
	require.NoError(mu.Remove(ctx, []byte("a")))
	require.NoError(mu.Commit(ctx))
	require.Zero(mu.Len())

	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)
	v, err := db.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)
}

func TestSimpleMutableDiscard(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()

	mu := NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("a"), []byte("1")))
	mu.Discard()
	require.NoError(mu.Commit(ctx))

	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)
}

func TestSimpleMutableFailedCommitKeepsDatabase(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := failingDB{memdb.New()}
	require.NoError(db.Put([]byte("a"), []byte("1")))

	mu := NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("a"), []byte("2")))
	require.NoError(mu.Insert(ctx, []byte("b"), []byte("3")))
	require.ErrorIs(mu.Commit(ctx), errWriteFailed)

	v, err := db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)
	has, err := db.Has([]byte("b"))
	require.NoError(err)
	require.False(has)
}

func TestSimpleMutableCanceledContext(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mu := NewSimpleMutable(memdb.New())
	require.NoError(mu.Insert(ctx, []byte("a"), []byte("1")))
	require.ErrorIs(mu.Commit(ctx), context.Canceled)
	require.Equal(1, mu.Len())
}
