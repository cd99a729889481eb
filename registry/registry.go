// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry loads the per-network deployment parameters of a ledger
// (role holders, emission rate, precision and the initial recipients) from a
// YAML file.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v2"

	"github.com/helix-labs/feeminter/codec"
	"github.com/helix-labs/feeminter/emission"
)

var (
	ErrUnknownNetwork     = errors.New("unknown network")
	ErrDuplicateNetwork   = errors.New("duplicate chain id")
	ErrMissingName        = errors.New("missing name")
	ErrInvalidTotal       = errors.New("invalid total per block")
	ErrDuplicateRecipient = errors.New("duplicate recipient")
)

type Recipient struct {
	// Human readable label, e.g. "treasury".
	Name    string `yaml:"name" json:"name"`
	Address string `yaml:"address" json:"address"`
	// Percentage of the total, e.g. "62.5".
	Percent string `yaml:"percent" json:"percent"`
}

type Network struct {
	ChainID       uint64 `yaml:"chainId" json:"chainId"`
	Name          string `yaml:"name" json:"name"`
	Owner         string `yaml:"owner" json:"owner"`
	TimelockOwner string `yaml:"timelockOwner" json:"timelockOwner"`
	// Base units of an 18 decimal token, as a plain integer.
	TotalPerBlock string `yaml:"totalPerBlock" json:"totalPerBlock"`
	// Defaults to [emission.DefaultDecimals] when omitted.
	Decimals   *uint8      `yaml:"decimals,omitempty" json:"decimals,omitempty"`
	Recipients []Recipient `yaml:"recipients" json:"recipients"`

	owner         common.Address
	timelockOwner common.Address
	total         *uint256.Int
	decimals      uint8
	minters       []common.Address
	shares        []uint16
}

type file struct {
	Networks []*Network `yaml:"networks"`
}

type Registry struct {
	networks map[uint64]*Network
}

func Load(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes and validates a registry. Unknown fields are rejected.
func Parse(b []byte) (*Registry, error) {
	var f file
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, err
	}
	r := &Registry{networks: make(map[uint64]*Network, len(f.Networks))}
	for _, n := range f.Networks {
		if _, ok := r.networks[n.ChainID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNetwork, n.ChainID)
		}
		if err := n.init(); err != nil {
			return nil, fmt.Errorf("network %d: %w", n.ChainID, err)
		}
		r.networks[n.ChainID] = n
	}
	return r, nil
}

func (r *Registry) Network(chainID uint64) (*Network, error) {
	n, ok := r.networks[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNetwork, chainID)
	}
	return n, nil
}

// ChainIDs returns every configured chain id in ascending order.
func (r *Registry) ChainIDs() []uint64 {
	ids := maps.Keys(r.networks)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (n *Network) init() error {
	if strings.TrimSpace(n.Name) == "" {
		return ErrMissingName
	}
	var err error
	if n.owner, err = parseRoleAddress(n.Owner); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if n.timelockOwner, err = parseRoleAddress(n.TimelockOwner); err != nil {
		return fmt.Errorf("timelockOwner: %w", err)
	}
	if n.total, err = uint256.FromDecimal(strings.TrimSpace(n.TotalPerBlock)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidTotal, n.TotalPerBlock, err)
	}
	n.decimals = emission.DefaultDecimals
	if n.Decimals != nil {
		n.decimals = *n.Decimals
	}

	names := make(map[string]struct{}, len(n.Recipients))
	addrs := make(map[common.Address]struct{}, len(n.Recipients))
	n.minters = make([]common.Address, len(n.Recipients))
	percents := make([]string, len(n.Recipients))
	for i, rcp := range n.Recipients {
		if strings.TrimSpace(rcp.Name) == "" {
			return fmt.Errorf("recipient %d: %w", i, ErrMissingName)
		}
		if _, ok := names[rcp.Name]; ok {
			return fmt.Errorf("%w: name %q", ErrDuplicateRecipient, rcp.Name)
		}
		names[rcp.Name] = struct{}{}
		addr, err := codec.ParseAddress(rcp.Address)
		if err != nil {
			return fmt.Errorf("recipient %q: %w", rcp.Name, err)
		}
		if _, ok := addrs[addr]; ok {
			return fmt.Errorf("%w: address %s", ErrDuplicateRecipient, addr)
		}
		addrs[addr] = struct{}{}
		n.minters[i] = addr
		percents[i] = rcp.Percent
	}
	if n.shares, err = emission.ToBasisPoints(percents, n.decimals); err != nil {
		return err
	}
	return nil
}

// parseRoleAddress accepts an empty string as "no holder".
func parseRoleAddress(s string) (common.Address, error) {
	if strings.TrimSpace(s) == "" {
		return common.Address{}, nil
	}
	return codec.ParseAddress(s)
}

// LedgerConfig returns the parameters a fresh ledger for this network is
// created with.
func (n *Network) LedgerConfig() emission.Config {
	return emission.Config{
		TotalPerBlock: new(uint256.Int).Set(n.total),
		Decimals:      n.decimals,
		Owner:         n.owner,
		TimelockOwner: n.timelockOwner,
	}
}

// Distribution returns the initial recipients in file order with their
// shares expressed in units of 1/10^decimals.
func (n *Network) Distribution() ([]common.Address, []uint16) {
	return append([]common.Address(nil), n.minters...), append([]uint16(nil), n.shares...)
}
