// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"context"
	"errors"
	"math/big"
	"math/rand"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	timelock = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	outsider = common.HexToAddress("0x00000000000000000000000000000000000000ff")

	minterA = common.HexToAddress("0x000000000000000000000000000000000000000a")
	minterB = common.HexToAddress("0x000000000000000000000000000000000000000b")
	minterC = common.HexToAddress("0x000000000000000000000000000000000000000c")
)

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

// errOnly drops the committed version of a mutation.
func errOnly(_ uint64, err error) error {
	return err
}

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	cfg := NewDefaultConfig()
	cfg.Owner = owner
	cfg.TimelockOwner = timelock
	l, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return l
}

func TestNewLedger(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t)

	require.Empty(l.GetMinters())
	require.Equal(DefaultDecimals, l.GetDecimals())
	require.True(l.GetTotalToMintPerBlock().IsZero())
	require.Equal(Active(owner), l.Owner())
	require.Equal(Active(timelock), l.TimelockOwner())
	require.Zero(l.Snapshot().Version)
}

func TestNewLedgerRejectsBadConfig(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	_, err := New(ctx, Config{Owner: owner})
	require.ErrorIs(err, ErrNilTotal)

	cfg := NewDefaultConfig()
	cfg.Decimals = MaxDecimals + 1
	_, err = New(ctx, cfg)
	require.ErrorIs(err, ErrDecimalsTooLarge)
}

func TestZeroAddressRoleStartsRenounced(t *testing.T) {
	require := require.New(t)
	cfg := NewDefaultConfig()
	cfg.Owner = owner
	l, err := New(context.Background(), cfg)
	require.NoError(err)

	require.False(l.TimelockOwner().Live())
	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(context.Background(), common.Address{}, tokens(1))), ErrUnauthorized)
	require.NoError(errOnly(l.SetTotalToMintPerBlock(context.Background(), owner, tokens(1))))
}

// Scenario: a full 100% split over three minters at 12 tokens per block.
func TestToMintPerBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner,
		[]common.Address{minterA, minterB, minterC},
		[]uint16{6250, 334, 3416},
	)))
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, timelock, tokens(12))))

	want, err := uint256.FromDecimal("7500000000000000000")
	require.NoError(err)
	require.Equal(want, l.GetToMintPerBlock(minterA))

	want, err = uint256.FromDecimal("400800000000000000")
	require.NoError(err)
	require.Equal(want, l.GetToMintPerBlock(minterB))

	want, err = uint256.FromDecimal("4099200000000000000")
	require.NoError(err)
	require.Equal(want, l.GetToMintPerBlock(minterC))

	require.Equal(uint16(6250), l.GetToMintPercent(minterA))
	require.True(l.GetToMintPerBlock(outsider).IsZero())
	require.Zero(l.GetToMintPercent(outsider))
}

func TestToMintPerBlockRoundsDown(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, uint256.NewInt(9_999))))
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{3})))
	// 9999 * 3 / 10000 = 2.9997
	require.Equal(uint256.NewInt(2), l.GetToMintPerBlock(minterA))
}

func TestLinearity(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	r := rand.New(rand.NewSource(1)) //#nosec G404

	for round := 0; round < 50; round++ {
		total := new(uint256.Int).SetUint64(r.Uint64())
		total.Mul(total, uint256.NewInt(r.Uint64()))
		require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, total)))

		minters := []common.Address{minterA, minterB, minterC}
		remaining := 10_000
		percents := make([]uint16, len(minters))
		for i := range percents {
			p := r.Intn(remaining + 1)
			percents[i] = uint16(p)
			remaining -= p
		}
		require.NoError(errOnly(l.SetToMintPercents(ctx, timelock, minters, percents)))

		for i, m := range minters {
			want := total.ToBig()
			want.Mul(want, big.NewInt(int64(percents[i])))
			want.Div(want, Denominator(DefaultDecimals).ToBig())
			require.Equal(want.String(), l.GetToMintPerBlock(m).ToBig().String())
		}
	}
}

// distinctMinters returns [n] minters with a share of 1 each.
func distinctMinters(n int) ([]common.Address, []uint16) {
	minters := make([]common.Address, n)
	percents := make([]uint16, n)
	for i := range minters {
		minters[i] = common.BigToAddress(big.NewInt(int64(0x1000 + i)))
		percents[i] = 1
	}
	return minters, percents
}

func TestSetToMintPercentsRejections(t *testing.T) {
	tooMany, tooManyPercents := distinctMinters(MaxMinters + 1)
	tests := []struct {
		name     string
		caller   common.Address
		minters  []common.Address
		percents []uint16
		wantErr  error
	}{
		{
			name:     "shares exceed maximum",
			caller:   owner,
			minters:  []common.Address{minterA, minterB},
			percents: []uint16{6000, 5000},
			wantErr:  ErrSharesExceedMaximum,
		},
		{
			name:     "duplicate recipient",
			caller:   owner,
			minters:  []common.Address{minterA, minterA},
			percents: []uint16{100, 200},
			wantErr:  ErrDuplicateRecipient,
		},
		{
			name:     "length mismatch",
			caller:   timelock,
			minters:  []common.Address{minterA, minterB},
			percents: []uint16{100},
			wantErr:  ErrLengthMismatch,
		},
		{
			name:     "too many minters",
			caller:   owner,
			minters:  tooMany,
			percents: tooManyPercents,
			wantErr:  ErrTooManyMinters,
		},
		{
			name:     "unauthorized",
			caller:   outsider,
			minters:  []common.Address{minterA},
			percents: []uint16{100},
			wantErr:  ErrUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			l := newTestLedger(t)
			require.NoError(errOnly(l.SetToMintPercents(ctx, owner,
				[]common.Address{minterC, minterB},
				[]uint16{4000, 1000},
			)))
			before := l.Snapshot()

			require.ErrorIs(errOnly(l.SetToMintPercents(ctx, tt.caller, tt.minters, tt.percents)), tt.wantErr)

			after := l.Snapshot()
			require.Same(before, after)
			require.Equal([]common.Address{minterC, minterB}, l.GetMinters())
			require.Equal(uint16(4000), l.GetToMintPercent(minterC))
			require.Zero(l.GetToMintPercent(minterA))
		})
	}
}

func TestFullReplace(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(10))))

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA, minterB}, []uint16{5000, 5000})))
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterB}, []uint16{10000})))

	require.Equal([]common.Address{minterB}, l.GetMinters())
	require.True(l.GetToMintPerBlock(minterA).IsZero())
	require.Equal(tokens(10), l.GetToMintPerBlock(minterB))
	require.Len(l.Snapshot().Shares, 1)
}

func TestFullReplaceKeepsNewOrder(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA, minterB, minterC}, []uint16{1, 2, 3})))
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterC, minterA}, []uint16{3, 1})))
	require.Equal([]common.Address{minterC, minterA}, l.GetMinters())

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, nil, nil)))
	require.Empty(l.GetMinters())
}

func TestGetMintersReturnsCopy(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	minters := []common.Address{minterA, minterB}
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, minters, []uint16{1, 2})))

	minters[0] = outsider
	got := l.GetMinters()
	require.Equal([]common.Address{minterA, minterB}, got)
	got[1] = outsider
	require.Equal([]common.Address{minterA, minterB}, l.GetMinters())
}

// Scenario: an outsider cannot change the total.
func TestSetTotalToMintPerBlockUnauthorized(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(3))))

	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(ctx, outsider, tokens(100))), ErrUnauthorized)
	require.Equal(tokens(3), l.GetTotalToMintPerBlock())

	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(ctx, owner, nil)), ErrNilTotal)
	require.Equal(tokens(3), l.GetTotalToMintPerBlock())
}

func TestSetTotalToMintPerBlockUnbounded(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	maxTotal := new(uint256.Int).SetAllOne()

	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, maxTotal)))
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{10000})))
	require.Equal(maxTotal, l.GetToMintPerBlock(minterA))
}

// Changing decimals does not rescale shares: the stale shares are read with
// the new denominator until the distribution is resubmitted.
func TestSetDecimalsDoesNotRescale(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(100))))
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{5000})))
	require.Equal(tokens(50), l.GetToMintPerBlock(minterA))

	require.NoError(errOnly(l.SetDecimals(ctx, timelock, 5)))
	require.Equal(uint8(5), l.GetDecimals())
	require.Equal(uint16(5000), l.GetToMintPercent(minterA))
	require.Equal(tokens(5), l.GetToMintPerBlock(minterA))

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{50000})))
	require.Equal(tokens(50), l.GetToMintPerBlock(minterA))
}

func TestSetDecimalsKeepsShareInvariant(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA, minterB}, []uint16{60, 50})))

	// 110 > 10^2
	require.ErrorIs(errOnly(l.SetDecimals(ctx, owner, 2)), ErrSharesExceedMaximum)
	require.Equal(DefaultDecimals, l.GetDecimals())

	require.ErrorIs(errOnly(l.SetDecimals(ctx, owner, MaxDecimals+1)), ErrDecimalsTooLarge)
	require.ErrorIs(errOnly(l.SetDecimals(ctx, outsider, 6)), ErrUnauthorized)
	require.Equal(DefaultDecimals, l.GetDecimals())

	require.NoError(errOnly(l.SetDecimals(ctx, owner, MaxDecimals)))
	require.Equal(MaxDecimals, l.GetDecimals())
}

func TestReconfigure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{10000})))
	before := l.Snapshot()

	// 40000 + 30000 is more than 10^4 but fine at 10^5.
	require.ErrorIs(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterB, minterC}, []uint16{40000, 30000})), ErrSharesExceedMaximum)
	require.ErrorIs(errOnly(l.Reconfigure(ctx, owner, tokens(1), 4, []common.Address{minterB, minterC}, []uint16{40000, 30000})), ErrSharesExceedMaximum)
	require.ErrorIs(errOnly(l.Reconfigure(ctx, owner, nil, 5, nil, nil)), ErrNilTotal)
	require.ErrorIs(errOnly(l.Reconfigure(ctx, outsider, tokens(1), 5, nil, nil)), ErrUnauthorized)
	require.Same(before, l.Snapshot())

	require.NoError(errOnly(l.Reconfigure(ctx, timelock, tokens(10), 5, []common.Address{minterB, minterC}, []uint16{40000, 30000})))
	snap := l.Snapshot()
	require.Equal(before.Version+1, snap.Version)
	require.Equal(uint8(5), snap.Decimals)
	require.Equal([]common.Address{minterB, minterC}, snap.Minters)
	require.Equal(tokens(4), l.GetToMintPerBlock(minterB))
	require.Equal(tokens(3), l.GetToMintPerBlock(minterC))
	require.True(l.GetToMintPerBlock(minterA).IsZero())
}

func TestVersionOnlyAdvancesOnCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	require.NoError(errOnly(l.SetTotalToMintPerBlock(ctx, owner, tokens(1))))
	require.ErrorIs(errOnly(l.SetTotalToMintPerBlock(ctx, outsider, tokens(2))), ErrUnauthorized)
	require.NoError(errOnly(l.SetDecimals(ctx, owner, 6)))
	require.Equal(uint64(2), l.Snapshot().Version)
}

func TestPublishedSnapshotIsImmutable(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)
	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA}, []uint16{10})))
	old := l.Snapshot()

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterB}, []uint16{20})))
	require.Equal([]common.Address{minterA}, old.Minters)
	require.Equal(map[common.Address]uint16{minterA: 10}, old.Shares)
}

// Readers running alongside writers only ever observe complete snapshots.
func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	distributions := [][]common.Address{
		{minterA, minterB},
		{minterB, minterC},
		{minterA, minterB, minterC},
		{minterC},
	}

	var (
		wg   sync.WaitGroup
		stop = make(chan struct{})
		errs = make(chan error, 4)
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := l.Snapshot()
				if err := snap.Validate(); err != nil {
					errs <- err
					return
				}
				if snap.ShareSum() != 10_000 && len(snap.Minters) != 0 {
					errs <- errors.New("observed partial distribution")
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		minters := distributions[i%len(distributions)]
		percents := make([]uint16, len(minters))
		remaining := uint16(10_000)
		for j := range percents {
			if j == len(percents)-1 {
				percents[j] = remaining
				break
			}
			percents[j] = remaining / 2
			remaining -= percents[j]
		}
		require.NoError(errOnly(l.SetToMintPercents(ctx, owner, minters, percents)))
	}
	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(err)
	}
}

func TestConcurrentWritersSerialize(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	var (
		wg       sync.WaitGroup
		errs     = make(chan error, 32)
		versions = make(chan uint64, 32)
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := owner
			if i%2 == 0 {
				caller = timelock
			}
			version, err := l.SetTotalToMintPerBlock(ctx, caller, tokens(uint64(i)))
			errs <- err
			versions <- version
		}(i)
	}
	wg.Wait()
	close(errs)
	close(versions)
	for err := range errs {
		require.NoError(err)
	}
	// Every writer is told the version its own commit produced.
	seen := make(map[uint64]bool, 32)
	for v := range versions {
		require.False(seen[v], "version %d returned twice", v)
		require.True(v >= 1 && v <= 32)
		seen[v] = true
	}
	require.Equal(uint64(32), l.Snapshot().Version)
}

func TestMutationsReturnCommittedVersion(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	l := newTestLedger(t)

	version, err := l.SetTotalToMintPerBlock(ctx, owner, tokens(3))
	require.NoError(err)
	require.Equal(uint64(1), version)

	version, err = l.SetToMintPercents(ctx, timelock, []common.Address{minterA}, []uint16{10_000})
	require.NoError(err)
	require.Equal(uint64(2), version)

	version, err = l.SetDecimals(ctx, outsider, 2)
	require.ErrorIs(err, ErrUnauthorized)
	require.Zero(version)
	require.Equal(uint64(2), l.Snapshot().Version)
}

func TestTooManyMintersRejectedUpFront(t *testing.T) {
	require := require.New(t)
	reg := prometheus.NewRegistry()
	l := newTestLedger(t, WithRegisterer(reg))
	minters, percents := distinctMinters(MaxMinters + 1)

	_, err := l.SetToMintPercents(context.Background(), owner, minters, percents)
	require.ErrorIs(err, ErrTooManyMinters)
	require.Equal(float64(1), testutil.ToFloat64(l.metrics.rejections.WithLabelValues("setToMintPercents", "too_many_minters")))

	minters, percents = distinctMinters(MaxMinters)
	_, err = l.SetToMintPercents(context.Background(), owner, minters, percents)
	require.NoError(err)
	require.Len(l.GetMinters(), MaxMinters)
}

func TestMetrics(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	l := newTestLedger(t, WithRegisterer(reg))

	require.NoError(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA, minterB}, []uint16{1, 2})))
	require.ErrorIs(errOnly(l.SetToMintPercents(ctx, outsider, nil, nil)), ErrUnauthorized)
	require.ErrorIs(errOnly(l.SetToMintPercents(ctx, owner, []common.Address{minterA, minterA}, []uint16{1, 2})), ErrDuplicateRecipient)

	require.Equal(float64(2), testutil.ToFloat64(l.metrics.minters))
	require.Equal(float64(1), testutil.ToFloat64(l.metrics.version))
	require.Equal(float64(1), testutil.ToFloat64(l.metrics.mutations.WithLabelValues("setToMintPercents")))
	require.Equal(float64(1), testutil.ToFloat64(l.metrics.rejections.WithLabelValues("setToMintPercents", "unauthorized")))
	require.Equal(float64(1), testutil.ToFloat64(l.metrics.rejections.WithLabelValues("setToMintPercents", "duplicate_recipient")))

	// A second ledger cannot share the registry.
	_, err := New(ctx, NewDefaultConfig(), WithRegisterer(reg))
	require.Error(err)
}
