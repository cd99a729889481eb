// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsInterval  = 10 * time.Second
	metricsNamespace = "feeminter_pebble"
)

type metrics struct {
	stallStart time.Time
	writeStall metric.Averager

	readLatency  metric.Averager
	batchLatency metric.Averager
	batchBytes   prometheus.Counter
	batches      prometheus.Counter

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	// refreshed every [metricsInterval]
	diskUsage      prometheus.Gauge
	tombstoneCount prometheus.Gauge
	obsoleteBytes  *prometheus.GaugeVec
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		batchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batch_bytes",
			Help:      "bytes of keys and values committed in batches",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batches",
			Help:      "number of committed batches",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "compactions",
			Help:      "number of started compactions by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_compactions",
			Help:      "number of running compactions",
		}),
		diskUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "disk_usage",
			Help:      "bytes on disk used by the ledger store",
		}),
		tombstoneCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tombstone_count",
			Help:      "approximate count of internal tombstones",
		}),
		obsoleteBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "obsolete_bytes",
			Help:      "bytes held by files the database no longer references",
		}, []string{"kind"}),
	}

	var err error
	errs := wrappers.Errs{}
	m.writeStall, err = metric.NewAverager("", metricsNamespace+"_write_stall", "time spent stalled on disk writes", r)
	errs.Add(err)
	m.readLatency, err = metric.NewAverager("", metricsNamespace+"_read_latency", "time spent in db get", r)
	errs.Add(err)
	m.batchLatency, err = metric.NewAverager("", metricsNamespace+"_batch_latency", "time spent committing a batch", r)
	errs.Add(err)
	if errs.Errored() {
		return nil, errs.Err
	}
	errs.Add(
		r.Register(m.batchBytes),
		r.Register(m.batches),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(m.diskUsage),
		r.Register(m.tombstoneCount),
		r.Register(m.obsoleteBytes),
	)
	return m, errs.Err
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.stallStart)))
}

func (db *Database) observeBatch(size int, start time.Time) {
	db.metrics.batches.Inc()
	db.metrics.batchBytes.Add(float64(size))
	db.metrics.batchLatency.Observe(float64(time.Since(start)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			pm := db.db.Metrics()
			db.metrics.diskUsage.Set(float64(pm.DiskSpaceUsage()))
			db.metrics.tombstoneCount.Set(float64(pm.Keys.TombstoneCount))
			db.metrics.obsoleteBytes.WithLabelValues("table").Set(float64(pm.Table.ObsoleteSize))
			db.metrics.obsoleteBytes.WithLabelValues("zombie").Set(float64(pm.Table.ZombieSize))
			db.metrics.obsoleteBytes.WithLabelValues("wal").Set(float64(pm.WAL.ObsoletePhysicalSize))
		case <-db.closing:
			return
		}
	}
}
