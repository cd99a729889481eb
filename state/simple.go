// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

var _ Mutable = (*SimpleMutable)(nil)

type changeOp struct {
	value  []byte
	delete bool
}

// SimpleMutable buffers writes on top of a [Database]. Nothing reaches the
// database until Commit, which applies every buffered change in a single
// batch.
type SimpleMutable struct {
	db Database

	changes map[string]changeOp
}

func NewSimpleMutable(db Database) *SimpleMutable {
	return &SimpleMutable{db, make(map[string]changeOp)}
}

func (s *SimpleMutable) GetValue(_ context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.delete {
			return nil, database.ErrNotFound
		}
		return v.value, nil
	}
	return s.db.Get(k)
}

func (s *SimpleMutable) Insert(_ context.Context, k []byte, v []byte) error {
	s.changes[string(k)] = changeOp{value: v}
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	s.changes[string(k)] = changeOp{delete: true}
	return nil
}

// Len returns the number of buffered changes.
func (s *SimpleMutable) Len() int {
	return len(s.changes)
}

// Discard drops every buffered change.
func (s *SimpleMutable) Discard() {
	clear(s.changes)
}

func (s *SimpleMutable) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := s.db.NewBatch()
	for k, op := range s.changes {
		var err error
		if op.delete {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), op.value)
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.Discard()
	return nil
}
