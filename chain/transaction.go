// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/keys"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/tstate"
)

type Transaction struct {
	Base *Base `json:"base"`

	Actions []Action `json:"actions"`
	Auth    Auth     `json:"auth"`

	bytes     []byte
	size      int
	id        ids.ID
	stateKeys state.Keys
}

func NewTx(base *Base, actions []Action) *Transaction {
	return &Transaction{
		Base:    base,
		Actions: actions,
	}
}

// Digest returns the bytes covered by the [Auth] signature.
func (t *Transaction) Digest() ([]byte, error) {
	size := t.Base.Size() + consts.ByteLen
	for _, action := range t.Actions {
		size += consts.ByteLen + action.Size()
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	t.Base.Marshal(p)
	p.PackByte(uint8(len(t.Actions)))
	for _, action := range t.Actions {
		p.PackByte(action.GetTypeID())
		action.Marshal(p)
	}
	return p.Bytes(), p.Err()
}

func (t *Transaction) Sign(
	factory AuthFactory,
	actionRegistry *codec.TypeParser[Action],
	authRegistry *codec.TypeParser[Auth],
) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth

	// Ensure transaction is fully initialized and correct by reloading it from
	// bytes
	size := len(msg) + consts.ByteLen + t.Auth.Size()
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	p = codec.NewReader(p.Bytes(), consts.NetworkSizeLimit)
	return UnmarshalTx(p, actionRegistry, authRegistry)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Expiry() int64 { return t.Base.Timestamp }

// Actor is the account every action of the transaction runs on behalf of.
func (t *Transaction) Actor() codec.Address { return t.Auth.Actor() }

// Verify checks the signature over the transaction digest.
func (t *Transaction) Verify(ctx context.Context) error {
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	if err := t.Auth.Verify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return nil
}

// StateKeys returns the union of the keys declared by every action.
func (t *Transaction) StateKeys(programID codec.Address) (state.Keys, error) {
	if t.stateKeys != nil {
		return t.stateKeys, nil
	}
	stateKeys := make(state.Keys)

	// Verify the formatting of state keys passed by the actions
	for _, action := range t.Actions {
		for k, v := range action.StateKeys(t.Auth.Actor(), programID) {
			if !keys.Valid([]byte(k)) {
				return nil, ErrInvalidKeyValue
			}
			// [Add] will take the union of key permissions
			stateKeys.Add(k, v)
		}
	}

	// Cache keys if called again
	t.stateKeys = stateKeys
	return stateKeys, nil
}

// PreExecute checks everything about the transaction that does not depend
// on state.
func (t *Transaction) PreExecute(r Rules, timestamp int64) error {
	if err := t.Base.Execute(r.GetChainID(), r, timestamp); err != nil {
		return err
	}
	switch {
	case len(t.Actions) == 0:
		return ErrNoActions
	case len(t.Actions) > int(r.GetMaxActionsPerTx()):
		return ErrTooManyActions
	default:
		return nil
	}
}

// Execute runs every action in order against [ts]. The first failing action
// reverts all changes of the transaction and is reported in the [Result].
//
// Invariant: [PreExecute] is called just before [Execute]
func (t *Transaction) Execute(
	ctx context.Context,
	p Parser,
	ts *tstate.TStateView,
	timestamp int64,
) *Result {
	var (
		r        = p.Rules()
		actor    = t.Auth.Actor()
		start    = ts.OpIndex()
		recorder = &Recorder{}
	)
	for i, action := range t.Actions {
		actionID := CreateActionID(t.id, uint8(i))
		if err := action.Execute(ctx, r, ts, timestamp, actor, actionID, recorder); err != nil {
			ts.Rollback(ctx, start)
			return &Result{
				TxID:      t.id,
				Actor:     actor,
				Success:   false,
				Error:     err.Error(),
				ErrorCode: p.ErrorCode(err),
				Logs:      recorder.Logs,
				Timestamp: timestamp,
			}
		}
	}
	return &Result{
		TxID:      t.id,
		Actor:     actor,
		Success:   true,
		Logs:      recorder.Logs,
		Events:    recorder.Events,
		Timestamp: timestamp,
	}
}

// CreateActionID derives a unique id for the action at [index] of [txID].
func CreateActionID(txID ids.ID, index uint8) ids.ID {
	return txID.Prefix(uint64(index))
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}

	t.Base.Marshal(p)
	p.PackByte(uint8(len(t.Actions)))
	for _, action := range t.Actions {
		p.PackByte(action.GetTypeID())
		action.Marshal(p)
	}
	p.PackByte(t.Auth.GetTypeID())
	t.Auth.Marshal(p)
	return p.Err()
}

func UnmarshalTx(
	p *codec.Packer,
	actionRegistry *codec.TypeParser[Action],
	authRegistry *codec.TypeParser[Auth],
) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	actions, err := unmarshalActions(p, actionRegistry)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal actions", err)
	}
	authType := p.UnpackByte()
	unmarshalAuth, ok := authRegistry.LookupIndex(authType)
	if !ok {
		return nil, fmt.Errorf("%w: %d is unknown auth type", ErrInvalidAuthID, authType)
	}
	auth, err := unmarshalAuth(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal auth", err)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	tx := NewTx(base, actions)
	tx.Auth = auth
	codecBytes := p.Bytes()
	tx.bytes = codecBytes[start:p.Offset()] // ensure errors handled before grabbing memory
	tx.size = len(tx.bytes)
	tx.id = hashing.ComputeHash256Array(tx.bytes)
	return tx, nil
}

func unmarshalActions(
	p *codec.Packer,
	actionRegistry *codec.TypeParser[Action],
) ([]Action, error) {
	actionCount := p.UnpackByte()
	if actionCount == 0 {
		return nil, ErrNoActions
	}
	actions := make([]Action, 0, actionCount)
	for i := uint8(0); i < actionCount; i++ {
		actionType := p.UnpackByte()
		unmarshalAction, ok := actionRegistry.LookupIndex(actionType)
		if !ok {
			return nil, fmt.Errorf("%w: %d is unknown action type", ErrInvalidActionID, actionType)
		}
		action, err := unmarshalAction(p)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal action", err)
		}
		actions = append(actions, action)
	}
	return actions, p.Err()
}

// ParseTx decodes a full transaction from [b]. Trailing bytes are rejected.
func ParseTx(b []byte, p Parser) (*Transaction, error) {
	rp := codec.NewReader(b, consts.NetworkSizeLimit)
	tx, err := UnmarshalTx(rp, p.ActionRegistry(), p.AuthRegistry())
	if err != nil {
		return nil, err
	}
	if !rp.Empty() {
		return nil, fmt.Errorf("%w: remaining=%d", ErrInvalidObject, len(b)-rp.Offset())
	}
	return tx, nil
}
