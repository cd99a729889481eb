// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helix-labs/feeminter/api"
	"github.com/helix-labs/feeminter/api/jsonrpc"
	"github.com/helix-labs/feeminter/config"
	"github.com/helix-labs/feeminter/emission"
	"github.com/helix-labs/feeminter/registry"
	"github.com/helix-labs/feeminter/server"
	"github.com/helix-labs/feeminter/storage"
	"github.com/helix-labs/feeminter/trace"
)

var errNoLiveRole = errors.New("no live role can apply the initial distribution")

var _ api.Backend = (*daemon)(nil)

type daemon struct {
	log    logging.Logger
	ledger *emission.Ledger
}

func (d *daemon) Ledger() api.Ledger {
	return d.ledger
}

func (d *daemon) Logger() logging.Logger {
	return d.log
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Stop()

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	network, err := reg.Network(cfg.ChainID)
	if err != nil {
		return err
	}
	log.Info("resolved network",
		zap.Uint64("chainID", network.ChainID),
		zap.String("name", network.Name),
	)

	metrics := prometheus.NewRegistry()
	if err := metrics.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	tracer, err := trace.New(cfg.Trace)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer func() {
		if err := tracer.Close(); err != nil {
			log.Error("failed to close tracer", zap.Error(err))
		}
	}()

	store, err := storage.New(cfg.Pebble, cfg.DataDir, storage.LedgerNamespace, metrics, tracer)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	ledger, err := emission.New(ctx, network.LedgerConfig(),
		emission.WithLogger(log),
		emission.WithStore(store),
		emission.WithRegisterer(metrics),
		emission.WithTracer(tracer),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	if err := bootstrap(ctx, ledger, network, log); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddress())
	if err != nil {
		return err
	}
	wrapper, err := server.NewMetricsWrapper(metrics)
	if err != nil {
		return err
	}
	srv := server.New(
		api.BaseURL,
		log,
		listener,
		cfg.HTTP,
		cfg.AllowedOrigins,
		cfg.AllowedHosts,
		cfg.ShutdownTimeout,
		wrapper,
	)
	rpcHandler, err := jsonrpc.JSONRPCServerFactory{}.New(&daemon{log: log, ledger: ledger})
	if err != nil {
		return err
	}
	if err := srv.AddHandlers(rpcHandler, server.NewMetricsHandler(metrics)); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Dispatch)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return srv.Shutdown()
	})
	return g.Wait()
}

// bootstrap applies the registry's initial distribution to a ledger that has
// never been mutated. A restored ledger is left untouched.
func bootstrap(ctx context.Context, ledger *emission.Ledger, network *registry.Network, log logging.Logger) error {
	snap := ledger.Snapshot()
	minters, shares := network.Distribution()
	if snap.Version != 0 || len(minters) == 0 {
		return nil
	}

	var caller emission.Holder
	switch {
	case snap.Owner.Live():
		caller = snap.Owner
	case snap.TimelockOwner.Live():
		caller = snap.TimelockOwner
	default:
		return errNoLiveRole
	}
	version, err := ledger.SetToMintPercents(ctx, caller.Address, minters, shares)
	if err != nil {
		return fmt.Errorf("failed to apply initial distribution: %w", err)
	}
	log.Info("applied initial distribution",
		zap.Uint64("version", version),
		zap.Int("minters", len(minters)),
		zap.Stringer("caller", caller),
	)
	return nil
}
