// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	require := require.New(t)

	tr, err := New(NewDefaultConfig())
	require.NoError(err)
	require.Equal(trace.Noop, tr)

	_, span := tr.Start(context.Background(), "commit")
	require.False(span.SpanContext().IsValid())
	span.End()
	require.NoError(tr.Close())
}

func TestEnabledWithoutEndpoint(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestEnabledRecordsSpans(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.TraceSampleRate = 1

	tr, err := New(cfg)
	require.NoError(err)
	ctx, parent := tr.Start(context.Background(), "Ledger.commit")
	_, child := tr.Start(ctx, "Store.Save")
	require.True(child.SpanContext().IsValid())
	require.Equal(parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	child.End()
	parent.End()
}
