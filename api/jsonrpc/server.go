// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/helix-labs/feeminter/api"
	"github.com/helix-labs/feeminter/emission"
)

const Endpoint = "/feeminter"

var _ api.HandlerFactory[api.Backend] = (*JSONRPCServerFactory)(nil)

type JSONRPCServerFactory struct{}

func (JSONRPCServerFactory) New(b api.Backend) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(b.Ledger(), b.Logger()))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	ledger api.Ledger
	log    logging.Logger
}

func NewJSONRPCServer(ledger api.Ledger, log logging.Logger) *JSONRPCServer {
	return &JSONRPCServer{ledger: ledger, log: log}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.log.Info("ping")
	reply.Success = true
	return nil
}

type MinterShare struct {
	Address common.Address `json:"address"`
	Share   uint16         `json:"share"`
	Percent string         `json:"percent"`
	// Base units minted per block.
	PerBlock string `json:"perBlock"`
}

type SnapshotReply struct {
	TotalPerBlock string          `json:"totalPerBlock"`
	Decimals      uint8           `json:"decimals"`
	Minters       []MinterShare   `json:"minters"`
	Owner         emission.Holder `json:"owner"`
	TimelockOwner emission.Holder `json:"timelockOwner"`
	Version       uint64          `json:"version"`
}

func (j *JSONRPCServer) Snapshot(_ *http.Request, _ *struct{}, reply *SnapshotReply) error {
	snap := j.ledger.Snapshot()
	reply.TotalPerBlock = snap.TotalPerBlock.ToBig().String()
	reply.Decimals = snap.Decimals
	reply.Minters = make([]MinterShare, len(snap.Minters))
	for i, m := range snap.Minters {
		share := snap.Shares[m]
		reply.Minters[i] = MinterShare{
			Address:  m,
			Share:    share,
			Percent:  emission.FormatPercent(share, snap.Decimals),
			PerBlock: snap.ToMintPerBlock(m).ToBig().String(),
		}
	}
	reply.Owner = snap.Owner
	reply.TimelockOwner = snap.TimelockOwner
	reply.Version = snap.Version
	return nil
}

type ToMintPerBlockArgs struct {
	Minter common.Address `json:"minter"`
}

type ToMintPerBlockReply struct {
	Amount   string `json:"amount"`
	Share    uint16 `json:"share"`
	Decimals uint8  `json:"decimals"`
}

func (j *JSONRPCServer) ToMintPerBlock(_ *http.Request, args *ToMintPerBlockArgs, reply *ToMintPerBlockReply) error {
	snap := j.ledger.Snapshot()
	reply.Amount = snap.ToMintPerBlock(args.Minter).ToBig().String()
	reply.Share = snap.Shares[args.Minter]
	reply.Decimals = snap.Decimals
	return nil
}

type MintersReply struct {
	Minters []common.Address `json:"minters"`
}

func (j *JSONRPCServer) Minters(_ *http.Request, _ *struct{}, reply *MintersReply) error {
	reply.Minters = append([]common.Address{}, j.ledger.Snapshot().Minters...)
	return nil
}

type OwnersReply struct {
	Owner         emission.Holder `json:"owner"`
	TimelockOwner emission.Holder `json:"timelockOwner"`
}

func (j *JSONRPCServer) Owners(_ *http.Request, _ *struct{}, reply *OwnersReply) error {
	snap := j.ledger.Snapshot()
	reply.Owner = snap.Owner
	reply.TimelockOwner = snap.TimelockOwner
	return nil
}

// MutationReply carries the snapshot version the mutation committed.
type MutationReply struct {
	Version uint64 `json:"version"`
}

type SetToMintPercentsArgs struct {
	Caller   common.Address   `json:"caller"`
	Minters  []common.Address `json:"minters"`
	Percents []uint16         `json:"percents"`
}

func (j *JSONRPCServer) SetToMintPercents(req *http.Request, args *SetToMintPercentsArgs, reply *MutationReply) error {
	version, err := j.ledger.SetToMintPercents(req.Context(), args.Caller, args.Minters, args.Percents)
	if err != nil {
		return err
	}
	j.mutated("setToMintPercents", args.Caller, version, reply)
	return nil
}

type SetTotalToMintPerBlockArgs struct {
	Caller common.Address `json:"caller"`
	// Base units as a decimal integer.
	Total string `json:"total"`
}

func (j *JSONRPCServer) SetTotalToMintPerBlock(req *http.Request, args *SetTotalToMintPerBlockArgs, reply *MutationReply) error {
	total, err := parseAmount(args.Total)
	if err != nil {
		return err
	}
	version, err := j.ledger.SetTotalToMintPerBlock(req.Context(), args.Caller, total)
	if err != nil {
		return err
	}
	j.mutated("setTotalToMintPerBlock", args.Caller, version, reply)
	return nil
}

type SetDecimalsArgs struct {
	Caller   common.Address `json:"caller"`
	Decimals uint8          `json:"decimals"`
}

func (j *JSONRPCServer) SetDecimals(req *http.Request, args *SetDecimalsArgs, reply *MutationReply) error {
	version, err := j.ledger.SetDecimals(req.Context(), args.Caller, args.Decimals)
	if err != nil {
		return err
	}
	j.mutated("setDecimals", args.Caller, version, reply)
	return nil
}

type ReconfigureArgs struct {
	Caller   common.Address   `json:"caller"`
	Total    string           `json:"total"`
	Decimals uint8            `json:"decimals"`
	Minters  []common.Address `json:"minters"`
	Percents []uint16         `json:"percents"`
}

func (j *JSONRPCServer) Reconfigure(req *http.Request, args *ReconfigureArgs, reply *MutationReply) error {
	total, err := parseAmount(args.Total)
	if err != nil {
		return err
	}
	version, err := j.ledger.Reconfigure(req.Context(), args.Caller, total, args.Decimals, args.Minters, args.Percents)
	if err != nil {
		return err
	}
	j.mutated("reconfigure", args.Caller, version, reply)
	return nil
}

type TransferOwnershipArgs struct {
	Caller common.Address `json:"caller"`
	// "owner" or "timelock"
	Role     string         `json:"role"`
	NewOwner common.Address `json:"newOwner"`
}

func (j *JSONRPCServer) TransferOwnership(req *http.Request, args *TransferOwnershipArgs, reply *MutationReply) error {
	role, err := emission.ParseRole(args.Role)
	if err != nil {
		return err
	}
	version, err := j.ledger.TransferRole(req.Context(), role, args.Caller, args.NewOwner)
	if err != nil {
		return err
	}
	j.mutated("transferOwnership", args.Caller, version, reply)
	return nil
}

type RenounceOwnershipArgs struct {
	Caller common.Address `json:"caller"`
	Role   string         `json:"role"`
}

func (j *JSONRPCServer) RenounceOwnership(req *http.Request, args *RenounceOwnershipArgs, reply *MutationReply) error {
	role, err := emission.ParseRole(args.Role)
	if err != nil {
		return err
	}
	version, err := j.ledger.RenounceRole(req.Context(), role, args.Caller)
	if err != nil {
		return err
	}
	j.mutated("renounceOwnership", args.Caller, version, reply)
	return nil
}

func (j *JSONRPCServer) mutated(method string, caller common.Address, version uint64, reply *MutationReply) {
	reply.Version = version
	j.log.Debug("served mutation",
		zap.String("method", method),
		zap.Stringer("caller", caller),
		zap.Uint64("version", version),
	)
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	return v, nil
}
