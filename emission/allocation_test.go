// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToBasisPoints(t *testing.T) {
	tests := []struct {
		name     string
		percents []string
		decimals uint8
		want     []uint16
		wantErr  error
	}{
		{
			name:     "default precision",
			percents: []string{"62.5", "3.34", "34.16"},
			decimals: 4,
			want:     []uint16{6250, 334, 3416},
		},
		{
			name:     "percent signs and spaces",
			percents: []string{" 50% ", "25.00%", ".5", "5."},
			decimals: 4,
			want:     []uint16{5000, 2500, 50, 500},
		},
		{
			name:     "whole percents at two decimals",
			percents: []string{"60", "40"},
			decimals: 2,
			want:     []uint16{60, 40},
		},
		{
			name:     "higher precision",
			percents: []string{"33.333", "0.001"},
			decimals: 5,
			want:     []uint16{33333, 1},
		},
		{
			name:     "empty distribution",
			percents: nil,
			decimals: 4,
			want:     []uint16{},
		},
		{
			name:     "too precise",
			percents: []string{"0.001"},
			decimals: 4,
			wantErr:  ErrPercentPrecision,
		},
		{
			name:     "over one hundred percent",
			percents: []string{"60", "50"},
			decimals: 4,
			wantErr:  ErrSharesExceedMaximum,
		},
		{
			name:     "share does not fit",
			percents: []string{"70"},
			decimals: 5,
			wantErr:  ErrPercentTooLarge,
		},
		{
			name:     "negative",
			percents: []string{"-1"},
			decimals: 4,
			wantErr:  ErrInvalidPercent,
		},
		{
			name:     "empty",
			percents: []string{"%"},
			decimals: 4,
			wantErr:  ErrInvalidPercent,
		},
		{
			name:     "decimals too large",
			percents: []string{"1"},
			decimals: MaxDecimals + 1,
			wantErr:  ErrDecimalsTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			got, err := ToBasisPoints(tt.percents, tt.decimals)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr == nil {
				require.Equal(tt.want, got)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	require := require.New(t)
	require.Equal("62.5", FormatPercent(6250, 4))
	require.Equal("3.34", FormatPercent(334, 4))
	require.Equal("100", FormatPercent(10000, 4))
	require.Equal("0", FormatPercent(0, 4))
	require.Equal("0.5", FormatPercent(50, 4))
	require.Equal("0.001", FormatPercent(1, 5))
	require.Equal("100", FormatPercent(1, 0))

	for _, p := range []string{"62.5", "3.34", "0.01", "100"} {
		shares, err := ToBasisPoints([]string{p}, 4)
		require.NoError(err)
		require.Equal(p, FormatPercent(shares[0], 4))
	}
}
