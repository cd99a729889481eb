// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import "errors"

var (
	// Authorization errors
	ErrUnauthorized         = errors.New("caller is neither owner nor timelock owner")
	ErrRoleAlreadyRenounced = errors.New("role was renounced")
	ErrNotRoleHolder        = errors.New("caller does not hold role")
	ErrZeroAddress          = errors.New("zero address")
	ErrUnknownRole          = errors.New("unknown role")

	// Distribution errors
	ErrLengthMismatch      = errors.New("minters and percents length mismatch")
	ErrDuplicateRecipient  = errors.New("duplicate recipient")
	ErrTooManyMinters      = errors.New("too many minters")
	ErrSharesExceedMaximum = errors.New("shares exceed maximum")
	ErrDecimalsTooLarge    = errors.New("decimals too large")
	ErrNilTotal            = errors.New("total to mint per block is nil")

	// Allocation errors
	ErrInvalidPercent   = errors.New("invalid percent")
	ErrPercentPrecision = errors.New("percent has more precision than decimals allow")
	ErrPercentTooLarge  = errors.New("percent does not fit in a share")

	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// rejectionReasons labels the rejection counter. Order matters: the first
// match wins.
var rejectionReasons = []struct {
	err    error
	reason string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrRoleAlreadyRenounced, "role_renounced"},
	{ErrNotRoleHolder, "not_role_holder"},
	{ErrZeroAddress, "zero_address"},
	{ErrUnknownRole, "unknown_role"},
	{ErrLengthMismatch, "length_mismatch"},
	{ErrDuplicateRecipient, "duplicate_recipient"},
	{ErrTooManyMinters, "too_many_minters"},
	{ErrSharesExceedMaximum, "shares_exceed_maximum"},
	{ErrDecimalsTooLarge, "decimals_too_large"},
	{ErrNilTotal, "nil_total"},
}

func rejectionReason(err error) string {
	for _, r := range rejectionReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}
