// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

// unstake splits funds out of the validator's oldest stake account into a
// fresh unstake account and starts deactivation. Consuming the oldest seed
// first bounds how long any one stake account lives. The deactivated funds
// return to the reserve through WithdrawInactiveStake after the epoch
// boundary.
func (p *Processor) unstake(pool *state.Pool, amount token.Native, bound accounts.Bound) error {
	if err := pool.CheckMaintainer(bound["maintainer"].Address); err != nil {
		return err
	}
	voter := bound["voter"].Address
	validator, _, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	if validator.StakeSeeds.Count() == 0 {
		return reverts.ErrInvalidStakeAccount
	}
	if validator.UnstakeSeeds.Count() >= meridian.MaxUnstakeAccounts {
		return reverts.ErrMaxUnstakeAccountsReached
	}
	// The split destination must be funded past its own rent exemption or
	// the staking primitive refuses to create it.
	if amount <= p.env.Sysvars.Rent().ExemptBalance {
		return reverts.ErrInvalidAmount
	}

	source := p.StakeAccountAddress(voter, validator.StakeSeeds.Begin)
	if err := accounts.CheckDerived(source, bound["source_stake"].Address); err != nil {
		return err
	}
	destination := p.UnstakeAccountAddress(voter, validator.UnstakeSeeds.End)
	if err := accounts.CheckDerived(destination, bound["destination_unstake"].Address); err != nil {
		return err
	}

	sourceAccount, err := p.env.Store.Get(source)
	if err != nil {
		return errors.WithMessage(err, "load stake account")
	}
	if validator.Active {
		remaining, err := sourceAccount.Balance.Sub(amount)
		if err != nil || remaining < token.Native(meridian.MinimumStakeAccountBalance) {
			return reverts.ErrInvalidAmount
		}
	} else if amount != sourceAccount.Balance {
		// An inactive validator is being drained; partial unstakes would
		// leave seeds that can never retire.
		return reverts.ErrInvalidAmount
	}

	if err := p.env.Stake.Split(source, destination, amount); err != nil {
		return err
	}
	if err := p.env.Stake.Deactivate(destination); err != nil {
		return err
	}

	validator.UnstakeSeeds.End++
	if !validator.Active {
		validator.StakeSeeds.Begin++
	}
	if validator.UnstakeAccountsBalance, err = validator.UnstakeAccountsBalance.Add(amount); err != nil {
		return err
	}

	logger.Debug("unstake",
		"voter", voter,
		"amount", amount,
		"stakeSeeds", validator.StakeSeeds,
		"unstakeSeeds", validator.UnstakeSeeds,
	)
	return nil
}
