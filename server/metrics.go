// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helix-labs/feeminter/api"
)

const (
	metricsNamespace = "feeminter_api"
	// MetricsPath is mounted under the base URL.
	MetricsPath = "/metrics"
)

var _ Wrapper = (*metricsWrapper)(nil)

type metricsWrapper struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsWrapper instruments every request with a counter and a latency
// histogram labelled by status code and method.
func NewMetricsWrapper(r prometheus.Registerer) (Wrapper, error) {
	m := &metricsWrapper{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests",
			Help:      "number of HTTP requests served",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.requests),
		r.Register(m.duration),
	)
	return m, errs.Err
}

func (m *metricsWrapper) WrapHandler(h http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(
		m.requests,
		promhttp.InstrumentHandlerDuration(m.duration, h),
	)
}

// NewMetricsHandler exposes [g] in the prometheus text format.
func NewMetricsHandler(g prometheus.Gatherer) api.Handler {
	return api.Handler{
		Path:    MetricsPath,
		Handler: promhttp.HandlerFor(g, promhttp.HandlerOpts{}),
	}
}
