// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/state"
)

// mergeStake merges the validator's two oldest stake accounts, retiring the
// oldest seed. Anyone may call it; it only ever shrinks the account count
// and moves no balance out of the pool.
func (p *Processor) mergeStake(pool *state.Pool, bound accounts.Bound) error {
	voter := bound["voter"].Address
	validator, _, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	if validator.StakeSeeds.Count() < 2 {
		return reverts.ErrInvalidStakeAccount
	}

	from := p.StakeAccountAddress(voter, validator.StakeSeeds.Begin)
	if err := accounts.CheckDerived(from, bound["from_stake"].Address); err != nil {
		return err
	}
	to := p.StakeAccountAddress(voter, validator.StakeSeeds.Begin+1)
	if err := accounts.CheckDerived(to, bound["to_stake"].Address); err != nil {
		return err
	}

	fromAccount, err := p.env.Stake.Observe(from)
	if err != nil {
		return err
	}
	toAccount, err := p.env.Stake.Observe(to)
	if err != nil {
		return err
	}
	if !toAccount.CanMerge(fromAccount) {
		return reverts.ErrWrongStakeState
	}
	if err := p.env.Stake.Merge(from, to); err != nil {
		return err
	}
	validator.StakeSeeds.Begin++

	logger.Debug("stake accounts merged", "voter", voter, "stakeSeeds", validator.StakeSeeds)
	return nil
}
