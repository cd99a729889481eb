// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*Ledger)

func WithLogger(log logging.Logger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// WithStore makes every commit durable in [store] before it becomes visible,
// and restores the last saved snapshot on construction.
func WithStore(store Store) Option {
	return func(l *Ledger) {
		l.store = store
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(l *Ledger) {
		l.registerer = reg
	}
}

// WithTracer reports a span for every commit to [tracer].
func WithTracer(tracer trace.Tracer) Option {
	return func(l *Ledger) {
		l.tracer = tracer
	}
}
