// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

// Result is the outcome of executing a [Transaction]. Events are only kept
// for successful transactions.
type Result struct {
	TxID      ids.ID        `json:"txId"`
	Actor     codec.Address `json:"actor"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	ErrorCode uint32        `json:"errorCode,omitempty"`
	Logs      []string      `json:"logs"`
	Events    []codec.Bytes `json:"events"`
	Timestamp int64         `json:"timestamp"`
}

func (r *Result) Size() int {
	size := consts.IDLen + codec.AddressLen + consts.BoolLen +
		consts.IntLen + len(r.Error) + consts.IntLen +
		consts.IntLen + consts.IntLen + consts.Int64Len
	for _, log := range r.Logs {
		size += consts.IntLen + len(log)
	}
	for _, event := range r.Events {
		size += consts.IntLen + len(event)
	}
	return size
}

func (r *Result) Marshal(p *codec.Packer) {
	p.PackID(r.TxID)
	p.PackAddress(r.Actor)
	p.PackBool(r.Success)
	p.PackString(r.Error)
	p.PackInt(int(r.ErrorCode))
	p.PackInt(len(r.Logs))
	for _, log := range r.Logs {
		p.PackString(log)
	}
	p.PackInt(len(r.Events))
	for _, event := range r.Events {
		p.PackBytes(event)
	}
	p.PackInt64(r.Timestamp)
}

func (r *Result) Bytes() ([]byte, error) {
	p := codec.NewWriter(r.Size(), consts.MaxInt)
	r.Marshal(p)
	return p.Bytes(), p.Err()
}

func UnmarshalResult(p *codec.Packer) (*Result, error) {
	var result Result
	p.UnpackID(true, &result.TxID)
	p.UnpackAddress(&result.Actor)
	result.Success = p.UnpackBool()
	result.Error = p.UnpackString(false)
	result.ErrorCode = uint32(p.UnpackInt(false))
	numLogs := p.UnpackInt(false)
	for i := 0; i < numLogs && p.Err() == nil; i++ {
		result.Logs = append(result.Logs, p.UnpackString(false))
	}
	numEvents := p.UnpackInt(false)
	for i := 0; i < numEvents && p.Err() == nil; i++ {
		var event []byte
		p.UnpackBytes(consts.NetworkSizeLimit, false, &event)
		result.Events = append(result.Events, event)
	}
	result.Timestamp = p.UnpackInt64(false)
	return &result, p.Err()
}

func ParseResult(b []byte) (*Result, error) {
	p := codec.NewReader(b, consts.MaxInt)
	result, err := UnmarshalResult(p)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return result, nil
}
