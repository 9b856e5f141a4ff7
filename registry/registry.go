// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
)

var (
	Action *codec.TypeParser[chain.Action]
	Auth   *codec.TypeParser[chain.Auth]
)

// Setup types
func init() {
	Action = codec.NewTypeParser[chain.Action]()
	Auth = codec.NewTypeParser[chain.Auth]()

	errs := &wrappers.Errs{}
	errs.Add(
		// When registering new actions, ALWAYS make sure to append at the end.
		Action.Register(&actions.Initialize{}, actions.UnmarshalInitialize),
		Action.Register(&actions.Deposit{}, actions.UnmarshalDeposit),
		Action.Register(&actions.Withdraw{}, actions.UnmarshalWithdraw),

		// When registering new auth, ALWAYS make sure to append at the end.
		Auth.Register(&auth.ED25519{}, auth.UnmarshalED25519),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}

var _ chain.Parser = (*Parser)(nil)

// Parser decodes vault transactions under [rules].
type Parser struct {
	rules chain.Rules
}

func NewParser(rules chain.Rules) *Parser {
	return &Parser{rules: rules}
}

func (p *Parser) Rules() chain.Rules {
	return p.rules
}

func (*Parser) ActionRegistry() *codec.TypeParser[chain.Action] {
	return Action
}

func (*Parser) AuthRegistry() *codec.TypeParser[chain.Auth] {
	return Auth
}

func (*Parser) ErrorCode(err error) uint32 {
	return actions.ErrorCode(err)
}
