// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/helix-labs/feeminter/api"
	"github.com/helix-labs/feeminter/emission"
	"github.com/helix-labs/feeminter/requester"
)

type JSONRPCClient struct {
	requester *requester.EndpointRequester
}

// NewJSONRPCClient talks to the daemon listening at [uri], e.g.
// "http://127.0.0.1:9650".
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += api.BaseURL + Endpoint
	req := requester.New(uri, api.Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Snapshot(ctx context.Context) (*SnapshotReply, error) {
	resp := new(SnapshotReply)
	err := cli.requester.SendRequest(
		ctx,
		"snapshot",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ToMintPerBlock returns the per-block amount of [minter] together with its
// share and the precision the share is expressed in.
func (cli *JSONRPCClient) ToMintPerBlock(ctx context.Context, minter common.Address) (*uint256.Int, uint16, uint8, error) {
	resp := new(ToMintPerBlockReply)
	err := cli.requester.SendRequest(
		ctx,
		"toMintPerBlock",
		&ToMintPerBlockArgs{Minter: minter},
		resp,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	amount, err := parseAmount(resp.Amount)
	if err != nil {
		return nil, 0, 0, err
	}
	return amount, resp.Share, resp.Decimals, nil
}

func (cli *JSONRPCClient) Minters(ctx context.Context) ([]common.Address, error) {
	resp := new(MintersReply)
	err := cli.requester.SendRequest(
		ctx,
		"minters",
		nil,
		resp,
	)
	return resp.Minters, err
}

func (cli *JSONRPCClient) Owners(ctx context.Context) (emission.Holder, emission.Holder, error) {
	resp := new(OwnersReply)
	err := cli.requester.SendRequest(
		ctx,
		"owners",
		nil,
		resp,
	)
	return resp.Owner, resp.TimelockOwner, err
}

func (cli *JSONRPCClient) SetToMintPercents(
	ctx context.Context,
	caller common.Address,
	minters []common.Address,
	percents []uint16,
) (uint64, error) {
	return cli.mutate(ctx, "setToMintPercents", &SetToMintPercentsArgs{
		Caller:   caller,
		Minters:  minters,
		Percents: percents,
	})
}

func (cli *JSONRPCClient) SetTotalToMintPerBlock(ctx context.Context, caller common.Address, total *uint256.Int) (uint64, error) {
	return cli.mutate(ctx, "setTotalToMintPerBlock", &SetTotalToMintPerBlockArgs{
		Caller: caller,
		Total:  total.ToBig().String(),
	})
}

func (cli *JSONRPCClient) SetDecimals(ctx context.Context, caller common.Address, decimals uint8) (uint64, error) {
	return cli.mutate(ctx, "setDecimals", &SetDecimalsArgs{
		Caller:   caller,
		Decimals: decimals,
	})
}

func (cli *JSONRPCClient) Reconfigure(
	ctx context.Context,
	caller common.Address,
	total *uint256.Int,
	decimals uint8,
	minters []common.Address,
	percents []uint16,
) (uint64, error) {
	return cli.mutate(ctx, "reconfigure", &ReconfigureArgs{
		Caller:   caller,
		Total:    total.ToBig().String(),
		Decimals: decimals,
		Minters:  minters,
		Percents: percents,
	})
}

func (cli *JSONRPCClient) TransferOwnership(
	ctx context.Context,
	role emission.Role,
	caller common.Address,
	newOwner common.Address,
) (uint64, error) {
	return cli.mutate(ctx, "transferOwnership", &TransferOwnershipArgs{
		Caller:   caller,
		Role:     role.String(),
		NewOwner: newOwner,
	})
}

func (cli *JSONRPCClient) RenounceOwnership(ctx context.Context, role emission.Role, caller common.Address) (uint64, error) {
	return cli.mutate(ctx, "renounceOwnership", &RenounceOwnershipArgs{
		Caller: caller,
		Role:   role.String(),
	})
}

func (cli *JSONRPCClient) mutate(ctx context.Context, method string, args interface{}) (uint64, error) {
	resp := new(MutationReply)
	err := cli.requester.SendRequest(
		ctx,
		method,
		args,
		resp,
	)
	return resp.Version, err
}
