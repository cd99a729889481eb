// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EmptyAddress is the zero account. It never holds a role.
var EmptyAddress = common.Address{}

// ParseAddress parses a 0x-prefixed, 20 byte hex account. Unlike
// [common.HexToAddress], malformed input is rejected instead of silently
// truncated or zero padded.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return EmptyAddress, ErrInvalidAddress
	}
	if !common.IsHexAddress(s) {
		return EmptyAddress, ErrInvalidAddress
	}
	return common.HexToAddress(s), nil
}

// MustParseAddress is [ParseAddress] for package-level test fixtures.
func MustParseAddress(s string) common.Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}
