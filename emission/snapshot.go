// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	DefaultDecimals uint8 = 4
	// MaxDecimals is the largest precision whose denominator, 10^decimals,
	// still fits in 256 bits.
	MaxDecimals uint8 = 77

	// MaxMinters bounds the size of a distribution.
	MaxMinters = 4096
)

var ten = uint256.NewInt(10)

// Denominator returns 10^decimals, the share value that represents 100%.
func Denominator(decimals uint8) *uint256.Int {
	return new(uint256.Int).Exp(ten, uint256.NewInt(uint64(decimals)))
}

// Snapshot is one complete, immutable ledger configuration. A published
// snapshot is never modified; every mutation builds a new one.
type Snapshot struct {
	TotalPerBlock *uint256.Int
	Decimals      uint8
	// Minters is the registration order of recipients.
	Minters []common.Address
	Shares  map[common.Address]uint16

	Owner         Holder
	TimelockOwner Holder

	// Version increases by one on every committed mutation.
	Version uint64
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		TotalPerBlock: new(uint256.Int).Set(s.TotalPerBlock),
		Decimals:      s.Decimals,
		Minters:       append([]common.Address(nil), s.Minters...),
		Shares:        make(map[common.Address]uint16, len(s.Shares)),
		Owner:         s.Owner,
		TimelockOwner: s.TimelockOwner,
		Version:       s.Version,
	}
	for k, v := range s.Shares {
		c.Shares[k] = v
	}
	return c
}

// ToMintPerBlock returns totalPerBlock * shares[minter] / 10^decimals,
// rounded down. Unregistered minters receive zero.
func (s *Snapshot) ToMintPerBlock(minter common.Address) *uint256.Int {
	share, ok := s.Shares[minter]
	if !ok || share == 0 {
		return new(uint256.Int)
	}
	// The share sum never exceeds the denominator, so the quotient is at most
	// TotalPerBlock and cannot overflow.
	amount, _ := new(uint256.Int).MulDivOverflow(
		s.TotalPerBlock,
		uint256.NewInt(uint64(share)),
		Denominator(s.Decimals),
	)
	return amount
}

// ShareSum is the sum of every registered share.
func (s *Snapshot) ShareSum() uint64 {
	var sum uint64
	for _, m := range s.Minters {
		sum += uint64(s.Shares[m])
	}
	return sum
}

// Percents returns the shares in registration order.
func (s *Snapshot) Percents() []uint16 {
	out := make([]uint16, len(s.Minters))
	for i, m := range s.Minters {
		out[i] = s.Shares[m]
	}
	return out
}

// authorize checks that [caller] may reconfigure the distribution.
func (s *Snapshot) authorize(caller common.Address) error {
	if s.Owner.Holds(caller) || s.TimelockOwner.Holds(caller) {
		return nil
	}
	if s.Owner.RenouncedBy(caller) || s.TimelockOwner.RenouncedBy(caller) {
		return fmt.Errorf("%w: %s", ErrRoleAlreadyRenounced, caller)
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
}

func (s *Snapshot) holder(role Role) (*Holder, error) {
	switch role {
	case OwnerRole:
		return &s.Owner, nil
	case TimelockOwnerRole:
		return &s.TimelockOwner, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
}

// Validate checks the structural invariants of a snapshot: unique minters,
// a share entry for exactly the registered minters, and a share sum of at
// most 10^decimals.
func (s *Snapshot) Validate() error {
	if s.TotalPerBlock == nil {
		return ErrNilTotal
	}
	if s.Decimals > MaxDecimals {
		return fmt.Errorf("%w: %d > %d", ErrDecimalsTooLarge, s.Decimals, MaxDecimals)
	}
	if len(s.Shares) != len(s.Minters) {
		return fmt.Errorf("%w: %d minters but %d shares", ErrCorruptSnapshot, len(s.Minters), len(s.Shares))
	}
	percents := make([]uint16, len(s.Minters))
	for i, m := range s.Minters {
		share, ok := s.Shares[m]
		if !ok {
			return fmt.Errorf("%w: no share for %s", ErrCorruptSnapshot, m)
		}
		percents[i] = share
	}
	return validateDistribution(s.Minters, percents, s.Decimals)
}

// validateDistribution enforces the preconditions of a full-replace update.
func validateDistribution(minters []common.Address, percents []uint16, decimals uint8) error {
	if len(minters) != len(percents) {
		return fmt.Errorf("%w: %d minters, %d percents", ErrLengthMismatch, len(minters), len(percents))
	}
	if len(minters) > MaxMinters {
		return fmt.Errorf("%w: %d > %d", ErrTooManyMinters, len(minters), MaxMinters)
	}
	seen := make(map[common.Address]struct{}, len(minters))
	var sum uint64
	for i, m := range minters {
		if _, ok := seen[m]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRecipient, m)
		}
		seen[m] = struct{}{}
		sum += uint64(percents[i])
	}
	if limit := Denominator(decimals); uint256.NewInt(sum).Gt(limit) {
		return fmt.Errorf("%w: %d > %s", ErrSharesExceedMaximum, sum, limit)
	}
	return nil
}
