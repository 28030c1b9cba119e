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

// updateExchangeRate snapshots the native/share price for the current epoch.
// It must be the first pool operation of an epoch: withdrawals and fee
// distribution refuse to run on the previous epoch's snapshot. Running it
// twice in one epoch is rejected, so the price cannot move mid-epoch.
func (p *Processor) updateExchangeRate(pool *state.Pool, bound accounts.Bound) error {
	clock := p.env.Sysvars.Clock()
	if pool.ExchangeRate.ComputedInEpoch >= clock.Epoch {
		return reverts.ErrExchangeRateAlreadyUpdated
	}
	if err := checkShareMint(pool, bound); err != nil {
		return err
	}
	if err := accounts.CheckDerived(p.ReserveAddress(), bound["reserve"].Address); err != nil {
		return err
	}

	available, err := p.reserveAvailable()
	if err != nil {
		return err
	}
	nativeBalance, err := pool.TotalNativeBalance(available)
	if err != nil {
		return err
	}
	minted, err := p.env.Token.Supply(pool.ShareMint)
	if err != nil {
		return err
	}
	shareSupply, err := pool.TotalShareSupply(token.Shares(minted))
	if err != nil {
		return err
	}

	pool.ExchangeRate = state.ExchangeRate{
		ComputedInEpoch: clock.Epoch,
		ShareSupply:     shareSupply,
		NativeBalance:   nativeBalance,
	}
	logger.Info("exchange rate updated",
		"epoch", clock.Epoch,
		"nativeBalance", nativeBalance,
		"shareSupply", shareSupply,
	)
	return nil
}
