// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/balance"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

// withdraw burns the user's pool tokens and splits the equivalent native
// amount out of the chosen validator's oldest stake account into a stake
// account the user ends up owning. The user must pick the validator with the
// most effective stake, so withdrawals drain the largest validator first,
// and a single withdrawal is capped to a slice of the source account to
// bound its price impact.
func (p *Processor) withdraw(pool *state.Pool, amount token.Shares, bound accounts.Bound) error {
	clock := p.env.Sysvars.Clock()
	if err := pool.CheckExchangeRateCurrent(clock.Epoch); err != nil {
		return err
	}
	native, err := pool.ExchangeRate.ToNative(amount)
	if err != nil {
		return err
	}

	voter := bound["voter"].Address
	validator, index, err := validatorEntryAt(pool, voter)
	if err != nil {
		return err
	}
	largest, err := balance.ValidatorToWithdrawFrom(&pool.Validators)
	if err != nil {
		return err
	}
	if largest != index {
		return reverts.ErrValidatorWithMoreStakeExists
	}
	if validator.StakeSeeds.Count() == 0 {
		return reverts.ErrInvalidStakeAccount
	}

	source := p.StakeAccountAddress(voter, validator.StakeSeeds.Begin)
	if err := accounts.CheckDerived(source, bound["source_stake"].Address); err != nil {
		return err
	}
	sourceAccount, err := p.env.Store.Get(source)
	if err != nil {
		return errors.WithMessage(err, "load stake account")
	}

	cap, err := sourceAccount.Balance.MulRatio(token.Ratio{
		Numerator:   meridian.MaxWithdrawBps,
		Denominator: 10_000,
	})
	if err != nil {
		return err
	}
	if cap, err = cap.Add(token.Native(meridian.WithdrawFixedAllowance)); err != nil {
		return err
	}
	if native > cap {
		return reverts.ErrInvalidAmount
	}
	remaining, err := sourceAccount.Balance.Sub(native)
	if err != nil {
		return reverts.ErrInvalidAmount
	}
	if validator.Active && remaining < token.Native(meridian.MinimumStakeAccountBalance) {
		return reverts.ErrInvalidAmount
	}

	user := bound["user"].Address
	if err := checkShareMint(pool, bound); err != nil {
		return err
	}
	sourceToken := bound["source_token"].Address
	tokenAccount, err := p.checkTokenAccount(sourceToken, pool.ShareMint)
	if err != nil {
		return err
	}
	if tokenAccount.Owner != user {
		return reverts.ErrInvalidTokenOwner
	}

	// The destination must be fresh; splitting into a live stake account
	// would mix the user's funds with someone else's.
	destination := bound["destination_stake"].Address
	if _, err := p.env.Store.Get(destination); err == nil {
		return reverts.ErrAlreadyInUse
	} else if !errors.Is(err, runtime.ErrNotFound) {
		return err
	}

	if err := p.env.Stake.Split(source, destination, native); err != nil {
		return err
	}
	if err := p.env.Stake.SetAuthority(destination, user); err != nil {
		return err
	}
	if err := p.env.Token.Burn(pool.ShareMint, sourceToken, uint64(amount)); err != nil {
		return err
	}

	if validator.StakeAccountsBalance, err = validator.StakeAccountsBalance.Sub(native); err != nil {
		return err
	}
	if err := pool.Metrics.ObserveWithdraw(amount, native); err != nil {
		return err
	}

	logger.Debug("withdraw",
		"user", user,
		"voter", voter,
		"shares", amount,
		"native", native,
	)
	return nil
}
