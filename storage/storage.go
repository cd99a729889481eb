// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/helix-labs/feeminter/emission"
	"github.com/helix-labs/feeminter/pebble"
	"github.com/helix-labs/feeminter/state"
	"github.com/helix-labs/feeminter/utils"
)

var _ emission.Store = (*Store)(nil)

// Store persists ledger snapshots in a [state.Database]. Every Save lands in
// a single batch.
type Store struct {
	db     state.Database
	tracer trace.Tracer
}

func NewStore(db state.Database, tracer trace.Tracer) *Store {
	return &Store{db: db, tracer: tracer}
}

// New opens a pebble backed store in [dataDir]/[namespace].
func New(
	cfg pebble.Config,
	dataDir string,
	namespace string,
	reg prometheus.Registerer,
	tracer trace.Tracer,
) (*Store, error) {
	path, err := utils.InitSubDirectory(dataDir, namespace)
	if err != nil {
		return nil, err
	}
	db, err := pebble.New(path, cfg, reg)
	if err != nil {
		return nil, err
	}
	return NewStore(db, tracer), nil
}

func (s *Store) Load(ctx context.Context) (*emission.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "Store.Load")
	defer span.End()

	snap, err := GetSnapshot(ctx, state.NewSimpleMutable(s.db))
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap *emission.Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "Store.Save", oteltrace.WithAttributes(
		attribute.Int64("version", int64(snap.Version)),
		attribute.Int("minters", len(snap.Minters)),
	))
	defer span.End()

	mu := state.NewSimpleMutable(s.db)
	if err := SetSnapshot(ctx, mu, snap); err != nil {
		mu.Discard()
		return err
	}
	span.SetAttributes(attribute.Int("changes", mu.Len()))
	return mu.Commit(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
