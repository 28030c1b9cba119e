// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/balance"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

// stakeDeposit delegates reserve funds to the chosen validator. The deposit
// must not push the validator past its target while another active validator
// sits further below target, so two maintainers racing against the same
// snapshot cannot concentrate stake; the loser's transaction fails instead.
func (p *Processor) stakeDeposit(pool *state.Pool, amount token.Native, bound accounts.Bound) error {
	if err := pool.CheckMaintainer(bound["maintainer"].Address); err != nil {
		return err
	}
	voter := bound["voter"].Address
	validator, index, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	if !validator.Active {
		return reverts.ErrStakeToInactiveValidator
	}
	if amount < token.Native(meridian.MinimumStakeAccountBalance) {
		return reverts.ErrInvalidAmount
	}

	if err := accounts.CheckDerived(p.ReserveAddress(), bound["reserve"].Address); err != nil {
		return err
	}
	available, err := p.reserveAvailable()
	if err != nil {
		return err
	}
	if amount > available {
		return reverts.ErrAmountExceedsReserve
	}

	targets, err := balance.Targets(available, &pool.Validators)
	if err != nil {
		return err
	}
	if furthest, _ := balance.FurthestBelowTarget(&pool.Validators, targets); furthest != index {
		resulting, err := validator.StakeAccountsBalance.Add(amount)
		if err != nil {
			return err
		}
		if resulting > targets[index] {
			return reverts.ErrValidatorWithLessStakeExists
		}
	}

	stakeEnd := p.StakeAccountAddress(voter, validator.StakeSeeds.End)
	if err := accounts.CheckDerived(stakeEnd, bound["stake_account_end"].Address); err != nil {
		return err
	}
	if err := p.transferNative(bound["reserve"].Address, stakeEnd, amount); err != nil {
		return err
	}
	if err := p.env.Stake.Delegate(stakeEnd, voter, p.StakeAuthority()); err != nil {
		return err
	}

	// The maintainer signals a merge by passing the account one seed below
	// instead of repeating the fresh one. Merging keeps the seed range from
	// growing by one account per deposit.
	mergeInto := bound["stake_account_merge_into"].Address
	if mergeInto != stakeEnd {
		if validator.StakeSeeds.Count() == 0 {
			return reverts.ErrInvalidStakeAccount
		}
		expected := p.StakeAccountAddress(voter, validator.StakeSeeds.End-1)
		if err := accounts.CheckDerived(expected, mergeInto); err != nil {
			return err
		}
		from, err := p.env.Stake.Observe(stakeEnd)
		if err != nil {
			return err
		}
		into, err := p.env.Stake.Observe(mergeInto)
		if err != nil {
			return err
		}
		if !into.CanMerge(from) {
			return reverts.ErrWrongStakeState
		}
		if err := p.env.Stake.Merge(stakeEnd, mergeInto); err != nil {
			return err
		}
	} else {
		validator.StakeSeeds.End++
	}

	if validator.StakeAccountsBalance, err = validator.StakeAccountsBalance.Add(amount); err != nil {
		return err
	}
	if err := pool.Metrics.ObserveDeposit(amount); err != nil {
		return err
	}

	logger.Debug("stake deposit",
		"voter", voter,
		"amount", amount,
		"stakeSeeds", validator.StakeSeeds,
	)
	return nil
}
