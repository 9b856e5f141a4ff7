// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/api"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/indexer"
	"github.com/ava-labs/vaultvm/storage"
)

const (
	Endpoint = "/vaultapi"

	defaultLimit = 100
	maxLimit     = 1024
)

var (
	ErrIndexDisabled = errors.New("deposit index disabled")
	ErrInvalidLimit  = errors.New("invalid limit")

	_ api.HandlerFactory[api.VM] = (*JSONRPCServerFactory)(nil)
)

type JSONRPCServerFactory struct {
	Index api.DepositIndex
}

func (f JSONRPCServerFactory) New(vm api.VM) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(vm, f.Index))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	vm    api.VM
	index api.DepositIndex
}

// NewJSONRPCServer returns the vault service. [index] may be nil.
func NewJSONRPCServer(vm api.VM, index api.DepositIndex) *JSONRPCServer {
	return &JSONRPCServer{vm: vm, index: index}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type NetworkReply struct {
	NetworkID uint32        `json:"networkId"`
	ChainID   ids.ID        `json:"chainId"`
	ProgramID codec.Address `json:"programId"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) (err error) {
	rules := j.vm.Rules()
	reply.NetworkID = rules.GetNetworkID()
	reply.ChainID = rules.GetChainID()
	reply.ProgramID = j.vm.ProgramID()
	return nil
}

type BalanceArgs struct {
	Address codec.Address `json:"address"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Balance")
	defer span.End()

	balance, err := j.vm.Balance(ctx, args.Address)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return nil
}

type VaultAddressReply struct {
	Vault   codec.Address `json:"vault"`
	State   codec.Address `json:"state"`
	Program codec.Address `json:"program"`
}

func (j *JSONRPCServer) VaultAddress(_ *http.Request, _ *struct{}, reply *VaultAddressReply) error {
	reply.Vault = j.vm.VaultAddress()
	reply.State = j.vm.StateAddress()
	reply.Program = j.vm.ProgramID()
	return nil
}

type VaultStateReply struct {
	Initialized bool                `json:"initialized"`
	State       *storage.VaultState `json:"state,omitempty"`
	Balance     uint64              `json:"balance"`
}

func (j *JSONRPCServer) VaultState(req *http.Request, _ *struct{}, reply *VaultStateReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.VaultState")
	defer span.End()

	state, ok, err := j.vm.VaultState(ctx)
	if err != nil {
		return err
	}
	balance, err := j.vm.Balance(ctx, j.vm.VaultAddress())
	if err != nil {
		return err
	}
	reply.Initialized = ok
	reply.State = state
	reply.Balance = balance
	return nil
}

type SubmitTxArgs struct {
	Tx codec.Bytes `json:"tx"`
}

type SubmitTxReply struct {
	TxID   ids.ID        `json:"txId"`
	Result *chain.Result `json:"result"`
}

// SubmitTx executes a signed transaction. Transactions that execute and fail
// are not errors: the failure is reported in the returned result.
func (j *JSONRPCServer) SubmitTx(
	req *http.Request,
	args *SubmitTxArgs,
	reply *SubmitTxReply,
) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	tx, err := chain.ParseTx(args.Tx, j.vm.Parser())
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	result, err := j.vm.Submit(ctx, tx)
	if err != nil {
		j.vm.Logger().Debug("rejected tx",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return err
	}
	reply.TxID = tx.ID()
	reply.Result = result
	return nil
}

type TxArgs struct {
	TxID ids.ID `json:"txId"`
}

type TxReply struct {
	Result *chain.Result `json:"result"`
}

func (j *JSONRPCServer) Tx(_ *http.Request, args *TxArgs, reply *TxReply) error {
	result, err := j.vm.GetResult(args.TxID)
	if err != nil {
		return err
	}
	reply.Result = result
	return nil
}

type DepositsArgs struct {
	// User filters deposits by depositor. The empty address returns the
	// latest deposits of every user, newest first.
	User codec.Address `json:"user"`
	// Offset skips the oldest deposits of User, or the newest deposits
	// when User is empty.
	Offset uint64 `json:"offset"`
	Limit  int    `json:"limit"`
}

type DepositsReply struct {
	Deposits []*indexer.Deposit `json:"deposits"`
}

func (j *JSONRPCServer) Deposits(_ *http.Request, args *DepositsArgs, reply *DepositsReply) error {
	if j.index == nil {
		return ErrIndexDisabled
	}
	limit, err := depositsLimit(args.Limit)
	if err != nil {
		return err
	}
	var deposits []*indexer.Deposit
	if args.User == codec.EmptyAddress {
		deposits, err = j.index.Latest(args.Offset, limit)
	} else {
		deposits, err = j.index.Deposits(args.User, args.Offset, limit)
	}
	if err != nil {
		return err
	}
	reply.Deposits = deposits
	return nil
}

type SummaryArgs struct {
	User codec.Address `json:"user"`
}

type SummaryReply struct {
	Summary *indexer.Summary `json:"summary"`
}

func (j *JSONRPCServer) Summary(_ *http.Request, args *SummaryArgs, reply *SummaryReply) error {
	if j.index == nil {
		return ErrIndexDisabled
	}
	summary, err := j.index.Summary(args.User)
	if err != nil {
		return err
	}
	reply.Summary = summary
	return nil
}

func depositsLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return defaultLimit, nil
	case limit < 0 || limit > maxLimit:
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLimit, limit, maxLimit)
	default:
		return limit, nil
	}
}
