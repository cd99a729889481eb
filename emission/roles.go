// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Role is one of the two governance roles allowed to reconfigure a ledger.
type Role uint8

const (
	OwnerRole Role = iota
	TimelockOwnerRole
)

func (r Role) String() string {
	switch r {
	case OwnerRole:
		return "owner"
	case TimelockOwnerRole:
		return "timelock"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole accepts the names produced by [Role.String].
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owner":
		return OwnerRole, nil
	case "timelock", "timelockowner", "timelock-owner":
		return TimelockOwnerRole, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Holder is the state of a single role: either Active(Address) or
// Renounced. A renounced holder remembers the account that gave the role up so
// that later calls from it can be reported as [ErrRoleAlreadyRenounced].
// Renouncing is terminal.
type Holder struct {
	Address   common.Address `json:"address"`
	Renounced bool           `json:"renounced"`
}

func Active(addr common.Address) Holder {
	return Holder{Address: addr}
}

func Renounced(former common.Address) Holder {
	return Holder{Address: former, Renounced: true}
}

// Holds reports whether [caller] currently holds the role.
func (h Holder) Holds(caller common.Address) bool {
	return !h.Renounced && h.Address != (common.Address{}) && h.Address == caller
}

// RenouncedBy reports whether [caller] gave up this role.
func (h Holder) RenouncedBy(caller common.Address) bool {
	return h.Renounced && h.Address != (common.Address{}) && h.Address == caller
}

// Live reports whether anyone can still act through this role.
func (h Holder) Live() bool {
	return !h.Renounced && h.Address != (common.Address{})
}

func (h Holder) String() string {
	if h.Renounced {
		return "renounced(" + h.Address.Hex() + ")"
	}
	return h.Address.Hex()
}

func newHolder(addr common.Address) Holder {
	if addr == (common.Address{}) {
		return Renounced(addr)
	}
	return Active(addr)
}
