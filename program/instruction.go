// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package program implements the instruction surface of the staking pool.
// A Processor is bound to one program address and one instance account; it
// decodes instructions, verifies the account list against the instruction's
// declared table, and executes the handler against the runtime environment.
package program

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

// ErrInvalidInstruction is returned for an unknown tag or a payload whose
// length does not match the instruction exactly.
var ErrInvalidInstruction = errors.New("invalid instruction data")

// Instruction is the closed set of operations the program accepts. Each
// instruction declares its own account table; the payload encoding is a
// single tag byte followed by the little-endian fixed-width arguments.
type Instruction interface {
	// Name identifies the instruction in logs and metrics.
	Name() string

	tag() byte
	table(instance *meridian.Address) []accounts.Meta
}

// Initialize sets up a new pool instance. The instance account, the share
// mint and the fee recipient token accounts are created by the handler; the
// derived reserve must exist and be rent exempt already.
type Initialize struct {
	RewardDistribution state.RewardDistribution
	MaxValidators      uint32
	MaxMaintainers     uint32
}

// Deposit moves native funds from the user into the reserve and mints pool
// tokens at the current exchange rate.
type Deposit struct {
	Amount token.Native
}

// Withdraw burns pool tokens and splits the equivalent native amount out of
// a validator's stake account into a stake account owned by the user.
type Withdraw struct {
	Amount token.Shares
}

// StakeDeposit delegates reserve funds to a validator.
type StakeDeposit struct {
	Amount token.Native
}

// Unstake splits funds out of a validator's oldest stake account into an
// unstake account and starts deactivation.
type Unstake struct {
	Amount token.Native
}

// UpdateExchangeRate snapshots the native/share price, once per epoch.
type UpdateExchangeRate struct{}

// WithdrawInactiveStake re-observes a validator's stake accounts, returns
// inactive balance to the reserve and distributes newly observed rewards.
type WithdrawInactiveStake struct{}

// ChangeRewardDistribution replaces the reward split and fee recipients.
type ChangeRewardDistribution struct {
	New state.RewardDistribution
}

// AddValidator adds a vote account to the registry.
type AddValidator struct{}

// DeactivateValidator permanently stops a validator accepting new stake.
type DeactivateValidator struct{}

// RemoveValidator removes a drained validator from the registry.
type RemoveValidator struct{}

// AddMaintainer adds an address to the maintainer set.
type AddMaintainer struct{}

// RemoveMaintainer removes an address from the maintainer set.
type RemoveMaintainer struct{}

// MergeStake merges a validator's two oldest stake accounts.
type MergeStake struct{}

// ClaimValidatorFee mints a validator's accrued fee credit to its fee
// address and resets the credit.
type ClaimValidatorFee struct{}

const (
	tagInitialize byte = iota
	tagDeposit
	tagWithdraw
	tagStakeDeposit
	tagUnstake
	tagUpdateExchangeRate
	tagWithdrawInactiveStake
	tagChangeRewardDistribution
	tagAddValidator
	tagDeactivateValidator
	tagRemoveValidator
	tagAddMaintainer
	tagRemoveMaintainer
	tagMergeStake
	tagClaimValidatorFee
)

func (*Initialize) Name() string               { return "Initialize" }
func (*Deposit) Name() string                  { return "Deposit" }
func (*Withdraw) Name() string                 { return "Withdraw" }
func (*StakeDeposit) Name() string             { return "StakeDeposit" }
func (*Unstake) Name() string                  { return "Unstake" }
func (*UpdateExchangeRate) Name() string       { return "UpdateExchangeRate" }
func (*WithdrawInactiveStake) Name() string    { return "WithdrawInactiveStake" }
func (*ChangeRewardDistribution) Name() string { return "ChangeRewardDistribution" }
func (*AddValidator) Name() string             { return "AddValidator" }
func (*DeactivateValidator) Name() string      { return "DeactivateValidator" }
func (*RemoveValidator) Name() string          { return "RemoveValidator" }
func (*AddMaintainer) Name() string            { return "AddMaintainer" }
func (*RemoveMaintainer) Name() string         { return "RemoveMaintainer" }
func (*MergeStake) Name() string               { return "MergeStake" }
func (*ClaimValidatorFee) Name() string        { return "ClaimValidatorFee" }

func (*Initialize) tag() byte               { return tagInitialize }
func (*Deposit) tag() byte                  { return tagDeposit }
func (*Withdraw) tag() byte                 { return tagWithdraw }
func (*StakeDeposit) tag() byte             { return tagStakeDeposit }
func (*Unstake) tag() byte                  { return tagUnstake }
func (*UpdateExchangeRate) tag() byte       { return tagUpdateExchangeRate }
func (*WithdrawInactiveStake) tag() byte    { return tagWithdrawInactiveStake }
func (*ChangeRewardDistribution) tag() byte { return tagChangeRewardDistribution }
func (*AddValidator) tag() byte             { return tagAddValidator }
func (*DeactivateValidator) tag() byte      { return tagDeactivateValidator }
func (*RemoveValidator) tag() byte          { return tagRemoveValidator }
func (*AddMaintainer) tag() byte            { return tagAddMaintainer }
func (*RemoveMaintainer) tag() byte         { return tagRemoveMaintainer }
func (*MergeStake) tag() byte               { return tagMergeStake }
func (*ClaimValidatorFee) tag() byte        { return tagClaimValidatorFee }

// EncodeInstruction serializes an instruction to its wire form.
func EncodeInstruction(inst Instruction) []byte {
	out := []byte{inst.tag()}
	le := binary.LittleEndian
	switch v := inst.(type) {
	case *Initialize:
		out = le.AppendUint32(out, v.RewardDistribution.TreasuryFee)
		out = le.AppendUint32(out, v.RewardDistribution.ValidationFee)
		out = le.AppendUint32(out, v.RewardDistribution.DeveloperFee)
		out = le.AppendUint32(out, v.RewardDistribution.ShareAppreciation)
		out = le.AppendUint32(out, v.MaxValidators)
		out = le.AppendUint32(out, v.MaxMaintainers)
	case *Deposit:
		out = le.AppendUint64(out, uint64(v.Amount))
	case *Withdraw:
		out = le.AppendUint64(out, uint64(v.Amount))
	case *StakeDeposit:
		out = le.AppendUint64(out, uint64(v.Amount))
	case *Unstake:
		out = le.AppendUint64(out, uint64(v.Amount))
	case *ChangeRewardDistribution:
		out = le.AppendUint32(out, v.New.TreasuryFee)
		out = le.AppendUint32(out, v.New.ValidationFee)
		out = le.AppendUint32(out, v.New.DeveloperFee)
		out = le.AppendUint32(out, v.New.ShareAppreciation)
	}
	return out
}

// DecodeInstruction parses the wire form of an instruction.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, errors.WithMessage(ErrInvalidInstruction, "empty payload")
	}
	tag, payload := data[0], data[1:]
	le := binary.LittleEndian

	u64Arg := func() (uint64, error) {
		if len(payload) != 8 {
			return 0, errors.WithMessagef(ErrInvalidInstruction, "tag %d wants 8 payload bytes, got %d", tag, len(payload))
		}
		return le.Uint64(payload), nil
	}
	distributionArg := func(extra int) (state.RewardDistribution, error) {
		if len(payload) != 16+extra {
			return state.RewardDistribution{}, errors.WithMessagef(
				ErrInvalidInstruction, "tag %d wants %d payload bytes, got %d", tag, 16+extra, len(payload))
		}
		return state.RewardDistribution{
			TreasuryFee:       le.Uint32(payload),
			ValidationFee:     le.Uint32(payload[4:]),
			DeveloperFee:      le.Uint32(payload[8:]),
			ShareAppreciation: le.Uint32(payload[12:]),
		}, nil
	}
	noArg := func(inst Instruction) (Instruction, error) {
		if len(payload) != 0 {
			return nil, errors.WithMessagef(ErrInvalidInstruction, "tag %d wants no payload, got %d bytes", tag, len(payload))
		}
		return inst, nil
	}

	switch tag {
	case tagInitialize:
		distribution, err := distributionArg(8)
		if err != nil {
			return nil, err
		}
		return &Initialize{
			RewardDistribution: distribution,
			MaxValidators:      le.Uint32(payload[16:]),
			MaxMaintainers:     le.Uint32(payload[20:]),
		}, nil
	case tagDeposit:
		amount, err := u64Arg()
		return &Deposit{Amount: token.Native(amount)}, err
	case tagWithdraw:
		amount, err := u64Arg()
		return &Withdraw{Amount: token.Shares(amount)}, err
	case tagStakeDeposit:
		amount, err := u64Arg()
		return &StakeDeposit{Amount: token.Native(amount)}, err
	case tagUnstake:
		amount, err := u64Arg()
		return &Unstake{Amount: token.Native(amount)}, err
	case tagUpdateExchangeRate:
		return noArg(&UpdateExchangeRate{})
	case tagWithdrawInactiveStake:
		return noArg(&WithdrawInactiveStake{})
	case tagChangeRewardDistribution:
		distribution, err := distributionArg(0)
		return &ChangeRewardDistribution{New: distribution}, err
	case tagAddValidator:
		return noArg(&AddValidator{})
	case tagDeactivateValidator:
		return noArg(&DeactivateValidator{})
	case tagRemoveValidator:
		return noArg(&RemoveValidator{})
	case tagAddMaintainer:
		return noArg(&AddMaintainer{})
	case tagRemoveMaintainer:
		return noArg(&RemoveMaintainer{})
	case tagMergeStake:
		return noArg(&MergeStake{})
	case tagClaimValidatorFee:
		return noArg(&ClaimValidatorFee{})
	default:
		return nil, errors.WithMessagef(ErrInvalidInstruction, "unknown tag %d", tag)
	}
}
