// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/helix-labs/feeminter/state"
)

var _ state.Database = (*Database)(nil)

type Config struct {
	CacheSize    int    `json:"cacheSize"`
	BytesPerSync int    `json:"bytesPerSync"`
	MemTableSize uint64 `json:"memTableSize"`
	MaxOpenFiles int    `json:"maxOpenFiles"`
	// Sync forces an fsync on every batch write. Ledger commits are rare, so
	// the default favours durability.
	Sync bool `json:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:    8 * units.MiB,
		BytesPerSync: units.MiB,
		MemTableSize: 4 * units.MiB,
		MaxOpenFiles: 256,
		Sync:         true,
	}
}

// Database is a [state.Database] backed by pebble.
type Database struct {
	db           *pebble.DB
	cache        *pebble.Cache
	writeOptions *pebble.WriteOptions
	metrics      *metrics

	closeOnce sync.Once
	closing   chan struct{}
	closed    sync.WaitGroup
}

// New opens (or creates) a pebble database in [file] and registers its
// metrics on [reg].
func New(file string, cfg Config, reg prometheus.Registerer) (*Database, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	db := &Database{
		cache:   pebble.NewCache(int64(cfg.CacheSize)),
		metrics: m,
		closing: make(chan struct{}),
	}
	if cfg.Sync {
		db.writeOptions = pebble.Sync
	} else {
		db.writeOptions = pebble.NoSync
	}
	opts := &pebble.Options{
		Cache:        db.cache,
		BytesPerSync: cfg.BytesPerSync,
		MemTableSize: cfg.MemTableSize,
		MaxOpenFiles: cfg.MaxOpenFiles,
	}
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: db.onCompactionBegin,
		CompactionEnd:   db.onCompactionEnd,
		WriteStallBegin: db.onWriteStallBegin,
		WriteStallEnd:   db.onWriteStallEnd,
	}
	d, err := pebble.Open(file, opts)
	if err != nil {
		db.cache.Unref()
		return nil, fmt.Errorf("open pebble at %s: %w", file, err)
	}
	db.db = d
	db.closed.Add(1)
	go func() {
		defer db.closed.Done()
		db.collectMetrics()
	}()
	return db, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	_, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

// Get returns a copy of the value stored under [key], or
// [database.ErrNotFound].
func (db *Database) Get(key []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		db.metrics.readLatency.Observe(float64(time.Since(start)))
	}()

	v, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, closer.Close()
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db, batch: db.db.NewBatch()}
}

func (db *Database) Close() error {
	var err error
	db.closeOnce.Do(func() {
		close(db.closing)
		db.closed.Wait()
		err = db.db.Close()
		db.cache.Unref()
	})
	return err
}

var _ database.Batch = (*batch)(nil)

type batch struct {
	db    *Database
	batch *pebble.Batch
	ops   []database.BatchOp
	size  int
}

func (b *batch) Put(key, value []byte) error {
	b.ops = append(b.ops, database.BatchOp{
		Key:   append([]byte(nil), key...),
		Value: append([]byte(nil), value...),
	})
	b.size += len(key) + len(value)
	return b.batch.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, database.BatchOp{
		Key:    append([]byte(nil), key...),
		Delete: true,
	})
	b.size += len(key)
	return b.batch.Delete(key, nil)
}

func (b *batch) Size() int {
	return b.size
}

func (b *batch) Write() error {
	start := time.Now()
	if err := b.batch.Commit(b.db.writeOptions); err != nil {
		return err
	}
	b.db.observeBatch(b.size, start)
	return nil
}

func (b *batch) Reset() {
	b.batch.Reset()
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	for _, op := range b.ops {
		var err error
		if op.Delete {
			err = w.Delete(op.Key)
		} else {
			err = w.Put(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}
