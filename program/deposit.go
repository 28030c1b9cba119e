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

// deposit moves native funds from the user into the reserve and mints pool
// tokens to the recipient. Conversion uses the exchange rate as-is: a
// deposit does not need the rate refreshed this epoch, because a stale rate
// can only under-credit the depositor relative to unobserved rewards, never
// dilute existing holders.
func (p *Processor) deposit(pool *state.Pool, amount token.Native, bound accounts.Bound) error {
	if amount == 0 {
		return reverts.ErrInvalidAmount
	}
	if err := checkShareMint(pool, bound); err != nil {
		return err
	}
	if err := accounts.CheckDerived(p.ReserveAddress(), bound["reserve"].Address); err != nil {
		return err
	}
	recipient := bound["recipient"].Address
	if _, err := p.checkTokenAccount(recipient, pool.ShareMint); err != nil {
		return err
	}

	if err := p.transferNative(bound["user"].Address, bound["reserve"].Address, amount); err != nil {
		return err
	}
	shares, err := pool.ExchangeRate.ToShares(amount)
	if err != nil {
		return err
	}
	if err := p.env.Token.MintTo(pool.ShareMint, recipient, uint64(shares)); err != nil {
		return err
	}
	if err := pool.Metrics.ObserveDeposit(amount); err != nil {
		return err
	}

	logger.Debug("deposit", "user", bound["user"].Address, "amount", amount, "shares", shares)
	return nil
}
