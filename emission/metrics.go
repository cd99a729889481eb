// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"math/big"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "feeminter"

type metrics struct {
	totalPerBlock prometheus.Gauge
	minters       prometheus.Gauge
	decimals      prometheus.Gauge
	version       prometheus.Gauge
	mutations     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		totalPerBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "total_per_block",
			Help:      "total units minted per block across all minters (approximate)",
		}),
		minters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "minters",
			Help:      "number of registered minters",
		}),
		decimals: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "decimals",
			Help:      "precision of the share denominator",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "version",
			Help:      "version of the committed snapshot",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations",
			Help:      "number of committed mutations",
		}, []string{"op"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejections",
			Help:      "number of rejected mutations",
		}, []string{"op", "reason"}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.totalPerBlock),
		r.Register(m.minters),
		r.Register(m.decimals),
		r.Register(m.version),
		r.Register(m.mutations),
		r.Register(m.rejections),
	)
	return m, errs.Err
}

func (m *metrics) observe(s *Snapshot) {
	total, _ := new(big.Float).SetInt(s.TotalPerBlock.ToBig()).Float64()
	m.totalPerBlock.Set(total)
	m.minters.Set(float64(len(s.Minters)))
	m.decimals.Set(float64(s.Decimals))
	m.version.Set(float64(s.Version))
}
