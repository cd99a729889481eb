// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/helix-labs/feeminter/consts"
)

var (
	bigTen     = big.NewInt(10)
	bigHundred = big.NewInt(100)
)

// ToBasisPoints converts human percentages ("62.5", "3.34%") into shares of
// 10^decimals. The conversion is exact: a percent that cannot be represented
// at [decimals] precision is rejected rather than rounded. The total of all
// shares may not exceed 100%.
func ToBasisPoints(percents []string, decimals uint8) ([]uint16, error) {
	if decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: %d > %d", ErrDecimalsTooLarge, decimals, MaxDecimals)
	}
	denominator := new(big.Int).Exp(bigTen, big.NewInt(int64(decimals)), nil)
	out := make([]uint16, len(percents))
	sum := new(big.Int)
	for i, p := range percents {
		share, err := percentToShare(p, denominator)
		if err != nil {
			return nil, err
		}
		if !share.IsUint64() || share.Uint64() > uint64(consts.MaxUint16) {
			return nil, fmt.Errorf("%w: %q is %s units", ErrPercentTooLarge, p, share)
		}
		out[i] = uint16(share.Uint64())
		sum.Add(sum, share)
	}
	if sum.Cmp(denominator) > 0 {
		return nil, fmt.Errorf("%w: %s > %s", ErrSharesExceedMaximum, sum, denominator)
	}
	return out, nil
}

func percentToShare(p string, denominator *big.Int) (*big.Int, error) {
	s := strings.TrimSuffix(strings.TrimSpace(p), "%")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPercent, p)
	}
	digits := whole + frac
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPercent, p)
		}
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPercent, p)
	}
	// share = n / 10^len(frac) / 100 * denominator
	n.Mul(n, denominator)
	scale := new(big.Int).Exp(bigTen, big.NewInt(int64(len(frac))), nil)
	scale.Mul(scale, bigHundred)
	share, rem := new(big.Int).QuoRem(n, scale, new(big.Int))
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("%w: %q", ErrPercentPrecision, p)
	}
	return share, nil
}

// FormatPercent renders a share of 10^decimals as a percentage, e.g. 6250 at
// 4 decimals is "62.5".
func FormatPercent(share uint16, decimals uint8) string {
	digits := new(big.Int).Mul(big.NewInt(int64(share)), bigHundred).String()
	d := int(decimals)
	if d == 0 {
		return digits
	}
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-d], strings.TrimRight(digits[len(digits)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
