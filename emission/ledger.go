// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package emission implements a basis-point weighted emission ledger: a total
// per-block mint rate split across an ordered set of minters, reconfigured
// only by an owner or a timelock owner.
//
// Readers load an immutable [Snapshot] through an atomic pointer and never
// block. Writers are serialized, validate against the current snapshot, make
// the result durable through an optional [Store], and only then publish it.
// A rejected or failed mutation leaves the previous snapshot in place.
package emission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Config holds the parameters a ledger is deployed with.
type Config struct {
	TotalPerBlock *uint256.Int
	Decimals      uint8
	Owner         common.Address
	TimelockOwner common.Address
}

func NewDefaultConfig() Config {
	return Config{
		TotalPerBlock: new(uint256.Int),
		Decimals:      DefaultDecimals,
	}
}

type Ledger struct {
	log        logging.Logger
	tracer     trace.Tracer
	store      Store
	registerer prometheus.Registerer
	metrics    *metrics

	// mu serializes writers. Readers only touch snapshot.
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// New creates a ledger with an empty recipient set. When a [Store] holding a
// previously saved snapshot is supplied, that snapshot is restored instead and
// [cfg] is ignored.
func New(ctx context.Context, cfg Config, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		log:    logging.NoLog{},
		tracer: trace.Noop,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registerer == nil {
		l.registerer = prometheus.NewRegistry()
	}
	m, err := newMetrics(l.registerer)
	if err != nil {
		return nil, err
	}
	l.metrics = m

	snap, err := l.initialSnapshot(ctx, cfg)
	if err != nil {
		return nil, err
	}
	l.snapshot.Store(snap)
	l.metrics.observe(snap)
	l.log.Info("emission ledger ready",
		zap.Uint64("version", snap.Version),
		zap.Stringer("totalPerBlock", snap.TotalPerBlock),
		zap.Uint8("decimals", snap.Decimals),
		zap.Int("minters", len(snap.Minters)),
		zap.Stringer("owner", snap.Owner),
		zap.Stringer("timelockOwner", snap.TimelockOwner),
	)
	return l, nil
}

func (l *Ledger) initialSnapshot(ctx context.Context, cfg Config) (*Snapshot, error) {
	if l.store != nil {
		snap, err := l.store.Load(ctx)
		switch {
		case err == nil:
			if err := snap.Validate(); err != nil {
				return nil, fmt.Errorf("restored snapshot: %w", err)
			}
			return snap, nil
		case !errors.Is(err, database.ErrNotFound):
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
	}

	if cfg.TotalPerBlock == nil {
		return nil, ErrNilTotal
	}
	if cfg.Decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: %d > %d", ErrDecimalsTooLarge, cfg.Decimals, MaxDecimals)
	}
	snap := &Snapshot{
		TotalPerBlock: new(uint256.Int).Set(cfg.TotalPerBlock),
		Decimals:      cfg.Decimals,
		Minters:       []common.Address{},
		Shares:        map[common.Address]uint16{},
		Owner:         newHolder(cfg.Owner),
		TimelockOwner: newHolder(cfg.TimelockOwner),
	}
	if l.store != nil {
		if err := l.store.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("save initial snapshot: %w", err)
		}
	}
	return snap, nil
}

// Snapshot returns the current configuration. The result must not be
// modified.
func (l *Ledger) Snapshot() *Snapshot {
	return l.snapshot.Load()
}

// GetToMintPerBlock returns the per-block emission of [minter]: zero for
// unregistered addresses.
func (l *Ledger) GetToMintPerBlock(minter common.Address) *uint256.Int {
	return l.snapshot.Load().ToMintPerBlock(minter)
}

// GetToMintPercent returns the share of [minter] in units of 1/10^decimals.
func (l *Ledger) GetToMintPercent(minter common.Address) uint16 {
	return l.snapshot.Load().Shares[minter]
}

// GetMinters returns the registered minters in registration order.
func (l *Ledger) GetMinters() []common.Address {
	return append([]common.Address(nil), l.snapshot.Load().Minters...)
}

func (l *Ledger) GetTotalToMintPerBlock() *uint256.Int {
	return new(uint256.Int).Set(l.snapshot.Load().TotalPerBlock)
}

func (l *Ledger) GetDecimals() uint8 {
	return l.snapshot.Load().Decimals
}

func (l *Ledger) Owner() Holder {
	return l.snapshot.Load().Owner
}

func (l *Ledger) TimelockOwner() Holder {
	return l.snapshot.Load().TimelockOwner
}

// SetToMintPercents replaces the whole distribution: [minters][i] receives
// [percents][i] and every previous minter missing from [minters] is dropped.
func (l *Ledger) SetToMintPercents(
	ctx context.Context,
	caller common.Address,
	minters []common.Address,
	percents []uint16,
) (uint64, error) {
	return l.commit(ctx, "setToMintPercents", func(next *Snapshot) error {
		if err := next.authorize(caller); err != nil {
			return err
		}
		if err := validateDistribution(minters, percents, next.Decimals); err != nil {
			return err
		}
		replaceDistribution(next, minters, percents)
		return nil
	})
}

// SetTotalToMintPerBlock sets the total emission. Its magnitude is not
// bounded.
func (l *Ledger) SetTotalToMintPerBlock(ctx context.Context, caller common.Address, total *uint256.Int) (uint64, error) {
	return l.commit(ctx, "setTotalToMintPerBlock", func(next *Snapshot) error {
		if err := next.authorize(caller); err != nil {
			return err
		}
		if total == nil {
			return ErrNilTotal
		}
		next.TotalPerBlock = new(uint256.Int).Set(total)
		return nil
	})
}

// SetDecimals changes the share denominator to 10^decimals. Existing shares
// are NOT rescaled: callers must follow up with [Ledger.SetToMintPercents]
// expressed in the new precision, or use [Ledger.Reconfigure] instead. The
// change is rejected when the current shares would exceed 100% under the new
// denominator.
func (l *Ledger) SetDecimals(ctx context.Context, caller common.Address, decimals uint8) (uint64, error) {
	return l.commit(ctx, "setDecimals", func(next *Snapshot) error {
		if err := next.authorize(caller); err != nil {
			return err
		}
		if decimals > MaxDecimals {
			return fmt.Errorf("%w: %d > %d", ErrDecimalsTooLarge, decimals, MaxDecimals)
		}
		if err := validateDistribution(next.Minters, next.Percents(), decimals); err != nil {
			return err
		}
		next.Decimals = decimals
		return nil
	})
}

// Reconfigure sets the total, the precision and the distribution in one
// commit. The percents are validated against the new [decimals].
func (l *Ledger) Reconfigure(
	ctx context.Context,
	caller common.Address,
	total *uint256.Int,
	decimals uint8,
	minters []common.Address,
	percents []uint16,
) (uint64, error) {
	return l.commit(ctx, "reconfigure", func(next *Snapshot) error {
		if err := next.authorize(caller); err != nil {
			return err
		}
		if total == nil {
			return ErrNilTotal
		}
		if decimals > MaxDecimals {
			return fmt.Errorf("%w: %d > %d", ErrDecimalsTooLarge, decimals, MaxDecimals)
		}
		if err := validateDistribution(minters, percents, decimals); err != nil {
			return err
		}
		next.TotalPerBlock = new(uint256.Int).Set(total)
		next.Decimals = decimals
		replaceDistribution(next, minters, percents)
		return nil
	})
}

// TransferRole hands [role] to [newHolder]. Only the current holder of that
// role may transfer it.
func (l *Ledger) TransferRole(ctx context.Context, role Role, caller, newHolder common.Address) (uint64, error) {
	return l.commit(ctx, "transfer_"+role.String(), func(next *Snapshot) error {
		h, err := next.holder(role)
		if err != nil {
			return err
		}
		if err := checkHolder(role, *h, caller); err != nil {
			return err
		}
		if newHolder == (common.Address{}) {
			return fmt.Errorf("%w: new %s", ErrZeroAddress, role)
		}
		*h = Active(newHolder)
		return nil
	})
}

// RenounceRole clears [role] for good. Only the current holder may renounce.
func (l *Ledger) RenounceRole(ctx context.Context, role Role, caller common.Address) (uint64, error) {
	return l.commit(ctx, "renounce_"+role.String(), func(next *Snapshot) error {
		h, err := next.holder(role)
		if err != nil {
			return err
		}
		if err := checkHolder(role, *h, caller); err != nil {
			return err
		}
		*h = Renounced(h.Address)
		return nil
	})
}

func (l *Ledger) TransferOwnership(ctx context.Context, caller, newOwner common.Address) (uint64, error) {
	return l.TransferRole(ctx, OwnerRole, caller, newOwner)
}

func (l *Ledger) TransferTimelockOwnership(ctx context.Context, caller, newOwner common.Address) (uint64, error) {
	return l.TransferRole(ctx, TimelockOwnerRole, caller, newOwner)
}

func (l *Ledger) RenounceOwnership(ctx context.Context, caller common.Address) (uint64, error) {
	return l.RenounceRole(ctx, OwnerRole, caller)
}

func (l *Ledger) RenounceTimelockOwnership(ctx context.Context, caller common.Address) (uint64, error) {
	return l.RenounceRole(ctx, TimelockOwnerRole, caller)
}

func checkHolder(role Role, h Holder, caller common.Address) error {
	switch {
	case h.Holds(caller):
		return nil
	case h.Renounced:
		return fmt.Errorf("%w: %s", ErrRoleAlreadyRenounced, role)
	default:
		return fmt.Errorf("%w: %s is not %s", ErrNotRoleHolder, caller, role)
	}
}

func replaceDistribution(next *Snapshot, minters []common.Address, percents []uint16) {
	next.Minters = append(make([]common.Address, 0, len(minters)), minters...)
	next.Shares = make(map[common.Address]uint16, len(minters))
	for i, m := range minters {
		next.Shares[m] = percents[i]
	}
}

// commit applies [mutate] to a private copy of the current snapshot and
// publishes the copy once it is durable. It returns the committed version.
func (l *Ledger) commit(ctx context.Context, op string, mutate func(next *Snapshot) error) (uint64, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.commit", oteltrace.WithAttributes(
		attribute.String("op", op),
	))
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.snapshot.Load()
	next := current.clone()
	if err := mutate(next); err != nil {
		l.metrics.rejections.WithLabelValues(op, rejectionReason(err)).Inc()
		l.log.Debug("rejected mutation",
			zap.String("op", op),
			zap.Error(err),
		)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	next.Version = current.Version + 1
	span.SetAttributes(attribute.Int64("version", int64(next.Version)))

	if l.store != nil {
		if err := l.store.Save(ctx, next); err != nil {
			span.SetStatus(codes.Error, err.Error())
			l.metrics.rejections.WithLabelValues(op, "store").Inc()
			l.log.Warn("failed to persist mutation",
				zap.String("op", op),
				zap.Uint64("version", next.Version),
				zap.Error(err),
			)
			return 0, fmt.Errorf("%s: persist snapshot: %w", op, err)
		}
	}

	l.snapshot.Store(next)
	l.metrics.mutations.WithLabelValues(op).Inc()
	l.metrics.observe(next)
	l.log.Info("committed mutation",
		zap.String("op", op),
		zap.Uint64("version", next.Version),
		zap.Stringer("totalPerBlock", next.TotalPerBlock),
		zap.Uint8("decimals", next.Decimals),
		zap.Int("minters", len(next.Minters)),
	)
	return next.Version, nil
}
