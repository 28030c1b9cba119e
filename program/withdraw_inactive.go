// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

// withdrawInactiveStake re-observes every account in the validator's seed
// ranges, returns inactive balance to the reserve and closes unstake
// accounts whose deactivation completed. Any observed balance beyond the
// tracked one is a reward or donation and goes through the fee split; this
// is the only path that sweeps outside funds into accounted balance, so
// donating to a stake account cannot move the exchange rate between updates.
func (p *Processor) withdrawInactiveStake(pool *state.Pool, bound accounts.Bound) error {
	voter := bound["voter"].Address
	validator, _, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	reserve := p.ReserveAddress()
	if err := accounts.CheckDerived(reserve, bound["reserve"].Address); err != nil {
		return err
	}
	rentExempt := p.env.Sysvars.Rent().ExemptBalance

	var observed, withdrawn token.Native

	for seed := validator.StakeSeeds.Begin; seed < validator.StakeSeeds.End; seed++ {
		address := p.StakeAccountAddress(voter, seed)
		account, err := p.env.Stake.Observe(address)
		if err != nil {
			return err
		}
		total, err := account.Balance.Total()
		if err != nil {
			return err
		}
		if observed, err = observed.Add(total); err != nil {
			return err
		}
		// Inactive balance above the rent exemption is dead weight; move it
		// back to the reserve where it counts as undelegated again.
		if account.Balance.Inactive > rentExempt {
			excess := account.Balance.Inactive - rentExempt
			if err := p.env.Stake.Withdraw(address, reserve, excess); err != nil {
				return err
			}
			if withdrawn, err = withdrawn.Add(excess); err != nil {
				return err
			}
		}
	}

	var unstakeRemaining token.Native
	closedAtFront := true
	for seed := validator.UnstakeSeeds.Begin; seed < validator.UnstakeSeeds.End; seed++ {
		address := p.UnstakeAccountAddress(voter, seed)
		account, err := p.env.Stake.Observe(address)
		if err != nil {
			return err
		}
		total, err := account.Balance.Total()
		if err != nil {
			return err
		}
		if observed, err = observed.Add(total); err != nil {
			return err
		}
		// Seeds retire strictly in order; a later account that finished
		// deactivating first stays until the ones before it are closed.
		if account.IsInactive() && closedAtFront {
			if err := p.env.Stake.Withdraw(address, reserve, total); err != nil {
				return err
			}
			if withdrawn, err = withdrawn.Add(total); err != nil {
				return err
			}
			validator.UnstakeSeeds.Begin++
			continue
		}
		closedAtFront = false
		if unstakeRemaining, err = unstakeRemaining.Add(total); err != nil {
			return err
		}
	}

	if observed < validator.StakeAccountsBalance {
		logger.Warn("validator balance decreased",
			"voter", voter,
			"tracked", validator.StakeAccountsBalance,
			"observed", observed,
		)
		return reverts.ErrValidatorBalanceDecreased
	}
	reward := observed - validator.StakeAccountsBalance
	if reward > 0 {
		if err := p.distributeFees(pool, validator, reward, bound); err != nil {
			return err
		}
	}

	if validator.StakeAccountsBalance, err = observed.Sub(withdrawn); err != nil {
		return err
	}
	validator.UnstakeAccountsBalance = unstakeRemaining

	logger.Debug("inactive stake withdrawn",
		"voter", voter,
		"returned", withdrawn,
		"reward", reward,
		"stakeBalance", validator.StakeAccountsBalance,
	)
	return nil
}

// distributeFees pushes an observed reward through the reward distribution.
// Treasury and developer shares are minted right away; the validator's share
// accrues as fee credit on its registry entry; the remainder stays in the
// pool, appreciating every outstanding share. Minting values shares at the
// current snapshot, so the snapshot must be from this epoch.
func (p *Processor) distributeFees(pool *state.Pool, validator *state.Validator, reward token.Native, bound accounts.Bound) error {
	if err := pool.CheckExchangeRateCurrent(p.env.Sysvars.Clock().Epoch); err != nil {
		return err
	}
	if err := checkShareMint(pool, bound); err != nil {
		return err
	}
	if bound["treasury"].Address != pool.FeeRecipients.TreasuryAccount {
		return reverts.ErrInvalidTokenAccount
	}
	if bound["developer"].Address != pool.FeeRecipients.DeveloperAccount {
		return reverts.ErrInvalidTokenAccount
	}

	fees, err := pool.RewardDistribution.SplitReward(reward, 1)
	if err != nil {
		return err
	}
	treasuryShares, err := pool.ExchangeRate.ToShares(fees.TreasuryAmount)
	if err != nil {
		return err
	}
	validationShares, err := pool.ExchangeRate.ToShares(fees.RewardPerValidator)
	if err != nil {
		return err
	}
	developerShares, err := pool.ExchangeRate.ToShares(fees.DeveloperAmount)
	if err != nil {
		return err
	}

	if treasuryShares > 0 {
		if err := p.env.Token.MintTo(pool.ShareMint, pool.FeeRecipients.TreasuryAccount, uint64(treasuryShares)); err != nil {
			return err
		}
	}
	if developerShares > 0 {
		if err := p.env.Token.MintTo(pool.ShareMint, pool.FeeRecipients.DeveloperAccount, uint64(developerShares)); err != nil {
			return err
		}
	}
	if validator.FeeCredit, err = validator.FeeCredit.Add(validationShares); err != nil {
		return err
	}
	return pool.Metrics.ObserveFees(fees, 1, treasuryShares, validationShares, developerShares)
}
