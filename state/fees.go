// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

// RewardDistribution defines how observed rewards are split. The fields are
// numerators over their sum, so {1, 1, 1, 97} sends 1% to each fee recipient
// class and leaves 97% in the pool as share appreciation.
type RewardDistribution struct {
	TreasuryFee       uint32
	ValidationFee     uint32
	DeveloperFee      uint32
	ShareAppreciation uint32
}

func (d *RewardDistribution) sum() uint64 {
	return uint64(d.TreasuryFee) + uint64(d.ValidationFee) + uint64(d.DeveloperFee) + uint64(d.ShareAppreciation)
}

// Check rejects a distribution with a zero denominator.
func (d *RewardDistribution) Check() error {
	if d.sum() == 0 {
		return reverts.ErrInvalidFeeAmount
	}
	return nil
}

func (d *RewardDistribution) treasuryFraction() token.Ratio {
	return token.Ratio{Numerator: uint64(d.TreasuryFee), Denominator: d.sum()}
}

func (d *RewardDistribution) validationFraction() token.Ratio {
	return token.Ratio{Numerator: uint64(d.ValidationFee), Denominator: d.sum()}
}

func (d *RewardDistribution) developerFraction() token.Ratio {
	return token.Ratio{Numerator: uint64(d.DeveloperFee), Denominator: d.sum()}
}

// Fees is the result of SplitReward. The appreciation amount is not paid out
// anywhere; summed with the fee amounts it reproduces the input.
type Fees struct {
	TreasuryAmount     token.Native
	RewardPerValidator token.Native
	DeveloperAmount    token.Native
	AppreciationAmount token.Native
}

// SplitReward splits an observed reward. Every fee rounds down, and the
// per-validator reward can lose up to numValidators units to flooring; all
// remainders become appreciation. Pool tokens should be minted for the fee
// amounts, as if the recipients were paid outside the pool and deposited.
func (d *RewardDistribution) SplitReward(amount token.Native, numValidators uint64) (Fees, error) {
	treasury, err := amount.MulRatio(d.treasuryFraction())
	if err != nil {
		return Fees{}, err
	}
	developer, err := amount.MulRatio(d.developerFraction())
	if err != nil {
		return Fees{}, err
	}
	validation, err := amount.MulRatio(d.validationFraction())
	if err != nil {
		return Fees{}, err
	}
	if numValidators == 0 && validation != 0 {
		return Fees{}, reverts.ErrCalculation
	}
	var perValidator token.Native
	if numValidators != 0 {
		perValidator = validation / token.Native(numValidators)
	}

	totalFees, err := token.SumNative(treasury, developer, perValidator*token.Native(numValidators))
	if err != nil {
		return Fees{}, err
	}
	appreciation, err := amount.Sub(totalFees)
	if err != nil {
		return Fees{}, err
	}

	return Fees{
		TreasuryAmount:     treasury,
		RewardPerValidator: perValidator,
		DeveloperAmount:    developer,
		AppreciationAmount: appreciation,
	}, nil
}

// FeeRecipients holds the pool token accounts fees are minted to.
type FeeRecipients struct {
	TreasuryAccount  meridian.Address
	DeveloperAccount meridian.Address
}
