// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/state"
)

// addValidator registers a vote account. The fee recipient must be a pool
// token account, since the validator's rewards are paid in pool tokens.
func (p *Processor) addValidator(pool *state.Pool, bound accounts.Bound) error {
	if err := pool.CheckManager(bound["manager"].Address); err != nil {
		return err
	}
	voter := bound["voter"].Address
	if _, err := p.env.Store.Get(voter); err != nil {
		if errors.Is(err, runtime.ErrNotFound) {
			return reverts.ErrInvalidVoteAccount
		}
		return err
	}
	feeRecipient := bound["fee_recipient"].Address
	if _, err := p.checkTokenAccount(feeRecipient, pool.ShareMint); err != nil {
		return err
	}
	if err := pool.Validators.Add(voter, state.NewValidator(feeRecipient)); err != nil {
		return err
	}
	logger.Info("validator added", "voter", voter, "validators", pool.Validators.Len())
	return nil
}

// deactivateValidator permanently stops a validator accepting stake. The
// entry stays until maintainers drain it and someone calls RemoveValidator.
func (p *Processor) deactivateValidator(pool *state.Pool, bound accounts.Bound) error {
	if err := pool.CheckManager(bound["manager"].Address); err != nil {
		return err
	}
	voter := bound["voter"].Address
	validator, _, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	validator.Active = false
	logger.Info("validator deactivated", "voter", voter)
	return nil
}

// removeValidator drops a fully drained entry. Permissionless: once the
// validator carries no balance, no seeds and no credit, anyone may clean up.
func (p *Processor) removeValidator(pool *state.Pool, bound accounts.Bound) error {
	voter := bound["voter"].Address
	validator, _, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	if err := validator.CheckCanBeRemoved(); err != nil {
		return err
	}
	if _, err := pool.Validators.Remove(voter); err != nil {
		return err
	}
	logger.Info("validator removed", "voter", voter, "validators", pool.Validators.Len())
	return nil
}

func (p *Processor) addMaintainer(pool *state.Pool, bound accounts.Bound) error {
	if err := pool.CheckManager(bound["manager"].Address); err != nil {
		return err
	}
	maintainer := bound["maintainer"].Address
	if err := pool.Maintainers.Add(maintainer, struct{}{}); err != nil {
		return err
	}
	logger.Info("maintainer added", "maintainer", maintainer)
	return nil
}

func (p *Processor) removeMaintainer(pool *state.Pool, bound accounts.Bound) error {
	if err := pool.CheckManager(bound["manager"].Address); err != nil {
		return err
	}
	maintainer := bound["maintainer"].Address
	if _, err := pool.Maintainers.Remove(maintainer); err != nil {
		return err
	}
	logger.Info("maintainer removed", "maintainer", maintainer)
	return nil
}

// changeRewardDistribution swaps the reward split and the fee recipients.
// The new recipients are re-checked against the share mint; rewards observed
// after this call use the new split, already-minted fees stay where they are.
func (p *Processor) changeRewardDistribution(pool *state.Pool, distribution state.RewardDistribution, bound accounts.Bound) error {
	if err := pool.CheckManager(bound["manager"].Address); err != nil {
		return err
	}
	if err := distribution.Check(); err != nil {
		return err
	}
	treasury := bound["treasury"].Address
	if _, err := p.checkTokenAccount(treasury, pool.ShareMint); err != nil {
		return err
	}
	developer := bound["developer"].Address
	if _, err := p.checkTokenAccount(developer, pool.ShareMint); err != nil {
		return err
	}
	pool.RewardDistribution = distribution
	pool.FeeRecipients = state.FeeRecipients{
		TreasuryAccount:  treasury,
		DeveloperAccount: developer,
	}
	logger.Info("reward distribution changed",
		"treasuryFee", distribution.TreasuryFee,
		"validationFee", distribution.ValidationFee,
		"developerFee", distribution.DeveloperFee,
		"shareAppreciation", distribution.ShareAppreciation,
	)
	return nil
}

// claimValidatorFee mints a validator's accrued fee credit to its fee
// address. Permissionless, so credit can always be settled before removal.
func (p *Processor) claimValidatorFee(pool *state.Pool, bound accounts.Bound) error {
	voter := bound["voter"].Address
	validator, _, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	if err := checkShareMint(pool, bound); err != nil {
		return err
	}
	if bound["fee_recipient"].Address != validator.FeeAddress {
		return reverts.ErrInvalidTokenAccount
	}
	credit := validator.FeeCredit
	if credit == 0 {
		return nil
	}
	if err := p.env.Token.MintTo(pool.ShareMint, validator.FeeAddress, uint64(credit)); err != nil {
		return err
	}
	validator.FeeCredit = 0
	logger.Debug("validator fee claimed", "voter", voter, "credit", credit)
	return nil
}
