// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/helix-labs/feeminter/codec"
	"github.com/helix-labs/feeminter/consts"
	"github.com/helix-labs/feeminter/emission"
	"github.com/helix-labs/feeminter/state"
)

var (
	ErrInvalidValue    = errors.New("invalid stored value")
	ErrMissingSnapshot = errors.New("incomplete snapshot")
)

func TotalKey() []byte {
	return []byte{totalPrefix}
}

func DecimalsKey() []byte {
	return []byte{decimalsPrefix}
}

func MintersKey() []byte {
	return []byte{mintersPrefix}
}

func VersionKey() []byte {
	return []byte{versionPrefix}
}

// RoleKey returns the key of the holder of [role].
func RoleKey(role emission.Role) ([]byte, error) {
	switch role {
	case emission.OwnerRole:
		return []byte{ownerPrefix}, nil
	case emission.TimelockOwnerRole:
		return []byte{timelockOwnerPrefix}, nil
	default:
		return nil, fmt.Errorf("%w: %s", emission.ErrUnknownRole, role)
	}
}

func SetTotalPerBlock(ctx context.Context, mu state.Mutable, total *uint256.Int) error {
	b := total.Bytes32()
	return mu.Insert(ctx, TotalKey(), b[:])
}

func GetTotalPerBlock(ctx context.Context, im state.Immutable) (*uint256.Int, error) {
	v, err := im.GetValue(ctx, TotalKey())
	if err != nil {
		return nil, err
	}
	if len(v) != consts.Uint256Len {
		return nil, fmt.Errorf("%w: total is %d bytes", ErrInvalidValue, len(v))
	}
	return new(uint256.Int).SetBytes32(v), nil
}

func SetDecimals(ctx context.Context, mu state.Mutable, decimals uint8) error {
	return mu.Insert(ctx, DecimalsKey(), []byte{decimals})
}

func GetDecimals(ctx context.Context, im state.Immutable) (uint8, error) {
	v, err := im.GetValue(ctx, DecimalsKey())
	if err != nil {
		return 0, err
	}
	if len(v) != consts.ByteLen {
		return 0, fmt.Errorf("%w: decimals is %d bytes", ErrInvalidValue, len(v))
	}
	return v[0], nil
}

func SetVersion(ctx context.Context, mu state.Mutable, version uint64) error {
	return mu.Insert(ctx, VersionKey(), binary.BigEndian.AppendUint64(nil, version))
}

func GetVersion(ctx context.Context, im state.Immutable) (uint64, error) {
	v, err := im.GetValue(ctx, VersionKey())
	if err != nil {
		return 0, err
	}
	if len(v) != consts.Uint64Len {
		return 0, fmt.Errorf("%w: version is %d bytes", ErrInvalidValue, len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetMinters stores the distribution as one ordered list so that the
// registration order survives a restart.
func SetMinters(
	ctx context.Context,
	mu state.Mutable,
	minters []common.Address,
	shares map[common.Address]uint16,
) error {
	if len(minters) > emission.MaxMinters {
		return fmt.Errorf("%w: %d > %d", emission.ErrTooManyMinters, len(minters), emission.MaxMinters)
	}
	size := consts.IntLen + len(minters)*shareLen
	p := codec.NewWriter(size, size)
	p.PackInt(uint32(len(minters)))
	for _, m := range minters {
		p.PackAddress(m)
		p.PackUint16(shares[m])
	}
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, MintersKey(), p.Bytes())
}

func GetMinters(ctx context.Context, im state.Immutable) ([]common.Address, map[common.Address]uint16, error) {
	v, err := im.GetValue(ctx, MintersKey())
	if err != nil {
		return nil, nil, err
	}
	p := codec.NewReader(v, consts.IntLen+emission.MaxMinters*shareLen)
	n := int(p.UnpackInt(false))
	if n > emission.MaxMinters {
		return nil, nil, fmt.Errorf("%w: %d > %d", emission.ErrTooManyMinters, n, emission.MaxMinters)
	}
	minters := make([]common.Address, n)
	shares := make(map[common.Address]uint16, n)
	for i := range minters {
		p.UnpackAddress(false, &minters[i])
		shares[minters[i]] = p.UnpackUint16()
	}
	if err := p.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: minters: %w", ErrInvalidValue, err)
	}
	if !p.Empty() {
		return nil, nil, fmt.Errorf("%w: trailing minter bytes", ErrInvalidValue)
	}
	return minters, shares, nil
}

func SetHolder(ctx context.Context, mu state.Mutable, role emission.Role, h emission.Holder) error {
	k, err := RoleKey(role)
	if err != nil {
		return err
	}
	p := codec.NewWriter(holderLen, holderLen)
	p.PackAddress(h.Address)
	p.PackBool(h.Renounced)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, k, p.Bytes())
}

func GetHolder(ctx context.Context, im state.Immutable, role emission.Role) (emission.Holder, error) {
	k, err := RoleKey(role)
	if err != nil {
		return emission.Holder{}, err
	}
	v, err := im.GetValue(ctx, k)
	if err != nil {
		return emission.Holder{}, err
	}
	if len(v) != holderLen {
		return emission.Holder{}, fmt.Errorf("%w: %s is %d bytes", ErrInvalidValue, role, len(v))
	}
	p := codec.NewReader(v, holderLen)
	var h emission.Holder
	p.UnpackAddress(false, &h.Address)
	h.Renounced = p.UnpackBool()
	if err := p.Err(); err != nil {
		return emission.Holder{}, fmt.Errorf("%w: %s: %w", ErrInvalidValue, role, err)
	}
	return h, nil
}

// SetSnapshot writes every field of [snap] into [mu].
func SetSnapshot(ctx context.Context, mu state.Mutable, snap *emission.Snapshot) error {
	if err := SetTotalPerBlock(ctx, mu, snap.TotalPerBlock); err != nil {
		return err
	}
	if err := SetDecimals(ctx, mu, snap.Decimals); err != nil {
		return err
	}
	if err := SetMinters(ctx, mu, snap.Minters, snap.Shares); err != nil {
		return err
	}
	if err := SetHolder(ctx, mu, emission.OwnerRole, snap.Owner); err != nil {
		return err
	}
	if err := SetHolder(ctx, mu, emission.TimelockOwnerRole, snap.TimelockOwner); err != nil {
		return err
	}
	return SetVersion(ctx, mu, snap.Version)
}

// GetSnapshot reads a snapshot back. The version key is written with every
// snapshot, so its absence means nothing was ever saved and the returned
// error wraps database.ErrNotFound. Any other missing key is reported as
// [ErrMissingSnapshot].
func GetSnapshot(ctx context.Context, im state.Immutable) (*emission.Snapshot, error) {
	version, err := GetVersion(ctx, im)
	if err != nil {
		return nil, err
	}
	snap := &emission.Snapshot{Version: version}
	if snap.TotalPerBlock, err = GetTotalPerBlock(ctx, im); err != nil {
		return nil, missing("total", err)
	}
	if snap.Decimals, err = GetDecimals(ctx, im); err != nil {
		return nil, missing("decimals", err)
	}
	if snap.Minters, snap.Shares, err = GetMinters(ctx, im); err != nil {
		return nil, missing("minters", err)
	}
	if snap.Owner, err = GetHolder(ctx, im, emission.OwnerRole); err != nil {
		return nil, missing("owner", err)
	}
	if snap.TimelockOwner, err = GetHolder(ctx, im, emission.TimelockOwnerRole); err != nil {
		return nil, missing("timelock owner", err)
	}
	return snap, nil
}

// missing hides database.ErrNotFound behind [ErrMissingSnapshot] so that a
// partially written snapshot is never mistaken for an empty store.
func missing(field string, err error) error {
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrMissingSnapshot, field)
}
