// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"errors"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/manifoldco/promptui"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/utils"
)

var (
	ErrInputEmpty          = errors.New("input is empty")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroAmount          = errors.New("amount must be positive")
)

// ValidateAddress accepts a base58 address.
func ValidateAddress(input string) error {
	_, err := codec.ParseAddress(strings.TrimSpace(input))
	return err
}

func Address(label string) (codec.Address, error) {
	promptText := promptui.Prompt{
		Label:    label,
		Validate: ValidateAddress,
	}
	recipient, err := promptText.Run()
	if err != nil {
		return codec.EmptyAddress, err
	}
	return codec.ParseAddress(strings.TrimSpace(recipient))
}

// ValidateAmount accepts a positive token amount of at most [balance]
// lamports.
func ValidateAmount(input string, balance uint64) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return ErrInputEmpty
	}
	amount, err := utils.ParseBalance(input)
	if err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if amount > balance {
		return ErrInsufficientBalance
	}
	return nil
}

// Amount prompts for a token amount and returns it in lamports.
func Amount(label string, balance uint64) (uint64, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			return ValidateAmount(input, balance)
		},
	}
	rawAmount, err := promptText.Run()
	if err != nil {
		return 0, err
	}
	return utils.ParseBalance(strings.TrimSpace(rawAmount))
}

// ValidateBool accepts y or n.
func ValidateBool(input string) error {
	if len(input) == 0 {
		return ErrInputEmpty
	}
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "y" || lower == "n" {
		return nil
	}
	return ErrInvalidChoice
}

func Bool(label string) (bool, error) {
	promptText := promptui.Prompt{
		Label:    label + " (y/n)",
		Validate: ValidateBool,
	}
	rawContinue, err := promptText.Run()
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(rawContinue)) == "y", nil
}

func Continue() (bool, error) {
	cont, err := Bool("continue")
	if err != nil {
		return false, err
	}
	if !cont {
		utils.Outf("{{red}}exiting...{{/}}\n")
	}
	return cont, nil
}

func ID(label string) (ids.ID, error) {
	promptText := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return ErrInputEmpty
			}
			_, err := ids.FromString(strings.TrimSpace(input))
			return err
		},
	}
	rawID, err := promptText.Run()
	if err != nil {
		return ids.Empty, err
	}
	return ids.FromString(strings.TrimSpace(rawID))
}
