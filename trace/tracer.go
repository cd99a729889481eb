// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trace builds the tracer that ledger commits and store writes report
// spans to.
package trace

import (
	"context"
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	tracerExportTimeout = 10 * time.Second
	// [tracerProviderShutdownTimeout] is longer than [tracerExportTimeout] so
	// in-flight exports can finish before the tracer provider shuts down.
	tracerProviderShutdownTimeout = 15 * time.Second

	DefaultEndpoint = "http://localhost:9411/api/v2/spans"
	DefaultAppName  = "feeminterd"
)

var ErrMissingEndpoint = errors.New("tracing enabled without a collector endpoint")

type Config struct {
	Enabled bool `json:"enabled"`

	// The fraction of traces to sample.
	// If >= 1 always samples.
	// If <= 0 never samples.
	TraceSampleRate float64 `json:"traceSampleRate"`

	// Endpoint is the zipkin collector spans are exported to.
	Endpoint string `json:"endpoint"`
	AppName  string `json:"appName"`
	Version  string `json:"version"`
}

func NewDefaultConfig() Config {
	return Config{
		TraceSampleRate: 0.1,
		Endpoint:        DefaultEndpoint,
		AppName:         DefaultAppName,
	}
}

type tracer struct {
	oteltrace.Tracer

	tp *sdktrace.TracerProvider
}

func (t *tracer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), tracerProviderShutdownTimeout)
	defer cancel()
	return t.tp.Shutdown(ctx)
}

// New returns [trace.Noop] unless tracing is enabled, in which case spans are
// batched to the zipkin collector at [Config.Endpoint].
func New(cfg Config) (trace.Tracer, error) {
	if !cfg.Enabled {
		return trace.Noop, nil
	}
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	exporter, err := zipkin.New(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(tracerExportTimeout)),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("version", cfg.Version),
				semconv.ServiceNameKey.String(cfg.AppName),
			),
		),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate)),
	)
	return &tracer{
		Tracer: tracerProvider.Tracer(cfg.AppName),
		tp:     tracerProvider,
	}, nil
}
