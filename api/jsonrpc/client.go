// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/api"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/indexer"
	"github.com/ava-labs/vaultvm/registry"
	"github.com/ava-labs/vaultvm/requester"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/utils"
)

// DefaultExpiry is how far in the future generated transactions expire.
const DefaultExpiry = 30 * time.Second

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	networkID uint32
	chainID   ids.ID
	programID codec.Address
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	return &JSONRPCClient{requester: requester.New(uri, api.Name)}
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

func (cli *JSONRPCClient) Network(ctx context.Context) (networkID uint32, chainID ids.ID, programID codec.Address, err error) {
	if cli.chainID != ids.Empty {
		return cli.networkID, cli.chainID, cli.programID, nil
	}

	resp := new(NetworkReply)
	err = cli.requester.SendRequest(
		ctx,
		"network",
		nil,
		resp,
	)
	if err != nil {
		return 0, ids.Empty, codec.EmptyAddress, err
	}
	cli.networkID = resp.NetworkID
	cli.chainID = resp.ChainID
	cli.programID = resp.ProgramID
	return resp.NetworkID, resp.ChainID, resp.ProgramID, nil
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr codec.Address) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"balance",
		&BalanceArgs{Address: addr},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) VaultAddress(ctx context.Context) (*VaultAddressReply, error) {
	resp := new(VaultAddressReply)
	err := cli.requester.SendRequest(
		ctx,
		"vaultAddress",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// VaultState returns the vault record, whether the vault is initialized, and
// the vault balance.
func (cli *JSONRPCClient) VaultState(ctx context.Context) (*storage.VaultState, bool, uint64, error) {
	resp := new(VaultStateReply)
	err := cli.requester.SendRequest(
		ctx,
		"vaultState",
		nil,
		resp,
	)
	return resp.State, resp.Initialized, resp.Balance, err
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, d []byte) (*chain.Result, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: d},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (cli *JSONRPCClient) Tx(ctx context.Context, txID ids.ID) (*chain.Result, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"tx",
		&TxArgs{TxID: txID},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Deposits returns the indexed deposits of [user]. The empty address returns
// the latest deposits of every user.
func (cli *JSONRPCClient) Deposits(ctx context.Context, user codec.Address, offset uint64, limit int) ([]*indexer.Deposit, error) {
	resp := new(DepositsReply)
	err := cli.requester.SendRequest(
		ctx,
		"deposits",
		&DepositsArgs{User: user, Offset: offset, Limit: limit},
		resp,
	)
	return resp.Deposits, err
}

func (cli *JSONRPCClient) Summary(ctx context.Context, user codec.Address) (*indexer.Summary, error) {
	resp := new(SummaryReply)
	err := cli.requester.SendRequest(
		ctx,
		"summary",
		&SummaryArgs{User: user},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Summary, nil
}

// GenerateTransaction signs [actions] with [factory] for the network the
// client is connected to.
func (cli *JSONRPCClient) GenerateTransaction(
	ctx context.Context,
	actions []chain.Action,
	factory chain.AuthFactory,
) (*chain.Transaction, error) {
	_, chainID, _, err := cli.Network(ctx)
	if err != nil {
		return nil, err
	}
	base := &chain.Base{
		Timestamp: utils.UnixRMilli(-1, DefaultExpiry.Milliseconds()),
		ChainID:   chainID,
	}
	return chain.NewTx(base, actions).Sign(factory, registry.Action, registry.Auth)
}

// Execute generates, signs and submits [actions].
func (cli *JSONRPCClient) Execute(
	ctx context.Context,
	actions []chain.Action,
	factory chain.AuthFactory,
) (*chain.Result, error) {
	tx, err := cli.GenerateTransaction(ctx, actions, factory)
	if err != nil {
		return nil, err
	}
	return cli.SubmitTx(ctx, tx.Bytes())
}
