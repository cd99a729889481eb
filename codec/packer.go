// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/helix-labs/feeminter/consts"
)

// Packer is a wrapper struct for the Packer struct
// from avalanchego/utils/wrappers/packing.go. It adds the
// ledger's own value types (accounts and 256-bit amounts) and
// required-field checks on top of the underlying byte codec.
type Packer struct {
	p *wrappers.Packer
}

// NewReader returns a Packer instance with the current byte array
// [src] and a maximum size of [limit].
func NewReader(src []byte, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: src, MaxSize: limit},
	}
}

// NewWriter returns a Packer instance with an initial size of [initial] and a
// maximum size of [limit].
func NewWriter(initial, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: make([]byte, 0, initial), MaxSize: limit},
	}
}

// Bytes returns the byte slice value of the underlying packer.
func (p *Packer) Bytes() []byte {
	return p.p.Bytes
}

func (p *Packer) Offset() int {
	return p.p.Offset
}

// Err returns the first error the packer ran into.
func (p *Packer) Err() error {
	return p.p.Err
}

// Empty reports whether every byte has been consumed.
func (p *Packer) Empty() bool {
	return p.p.Offset == len(p.p.Bytes)
}

func (p *Packer) addErr(err error) {
	p.p.Add(err)
}

func (p *Packer) PackByte(b byte) {
	p.p.PackByte(b)
}

func (p *Packer) UnpackByte() byte {
	return p.p.UnpackByte()
}

func (p *Packer) PackBool(b bool) {
	p.p.PackBool(b)
}

func (p *Packer) UnpackBool() bool {
	return p.p.UnpackBool()
}

func (p *Packer) PackUint16(v uint16) {
	p.p.PackShort(v)
}

func (p *Packer) UnpackUint16() uint16 {
	return p.p.UnpackShort()
}

func (p *Packer) PackInt(v uint32) {
	p.p.PackInt(v)
}

// UnpackInt reads a uint32. When [required] is set, a zero value is
// recorded as [ErrFieldNotPopulated].
func (p *Packer) UnpackInt(required bool) uint32 {
	v := p.p.UnpackInt()
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return v
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackLong(v)
}

func (p *Packer) UnpackUint64(required bool) uint64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return v
}

func (p *Packer) PackFixedBytes(b []byte) {
	p.p.PackFixedBytes(b)
}

func (p *Packer) PackBytes(b []byte) {
	p.p.PackBytes(b)
}

func (p *Packer) UnpackBytes(limit int, required bool, dest *[]byte) {
	*dest = p.p.UnpackBytes()
	if limit >= 0 && len(*dest) > limit {
		p.addErr(ErrTooManyItems)
		return
	}
	if required && len(*dest) == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
}

func (p *Packer) PackAddress(a common.Address) {
	p.p.PackFixedBytes(a[:])
}

// UnpackAddress reads a 20 byte account. When [required] is set, the zero
// account is recorded as [ErrFieldNotPopulated].
func (p *Packer) UnpackAddress(required bool, dest *common.Address) {
	b := p.p.UnpackFixedBytes(consts.AddressLen)
	if len(b) != consts.AddressLen {
		p.addErr(ErrInsufficientLength)
		return
	}
	copy(dest[:], b)
	if required && *dest == EmptyAddress {
		p.addErr(ErrFieldNotPopulated)
	}
}

// PackUint256 writes [v] as 32 big-endian bytes. A nil value packs as zero.
func (p *Packer) PackUint256(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	p.p.PackFixedBytes(b[:])
}

func (p *Packer) UnpackUint256() *uint256.Int {
	b := p.p.UnpackFixedBytes(consts.Uint256Len)
	if len(b) != consts.Uint256Len {
		p.addErr(ErrInsufficientLength)
		return new(uint256.Int)
	}
	return new(uint256.Int).SetBytes32(b)
}
