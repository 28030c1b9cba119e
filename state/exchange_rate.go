// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

// ExchangeRate is the native/share price snapshot taken once per epoch. All
// conversions in an epoch use the snapshot, not the live balances, so rewards
// paid at the start of an epoch only move the price after the next update.
type ExchangeRate struct {
	// ComputedInEpoch is the epoch of the last UpdateExchangeRate.
	ComputedInEpoch uint64

	// ShareSupply is the amount of pool tokens that existed at that time,
	// including unclaimed validator fee credit.
	ShareSupply token.Shares

	// NativeBalance is the native amount managed at that time, according to
	// internal bookkeeping.
	NativeBalance token.Native
}

// ToShares converts a native amount into pool tokens at the snapshot rate.
// The rate starts out 1:1 before any deposits, and stays 1:1 while either
// side of the snapshot is zero.
func (r *ExchangeRate) ToShares(amount token.Native) (token.Shares, error) {
	if r.ShareSupply == 0 || r.NativeBalance == 0 {
		return token.Shares(amount), nil
	}
	out, err := amount.MulRatio(token.Ratio{
		Numerator:   uint64(r.ShareSupply),
		Denominator: uint64(r.NativeBalance),
	})
	return token.Shares(out), err
}

// ToNative converts pool tokens into a native amount at the snapshot rate.
// With no pool tokens in existence there is nothing to exchange.
func (r *ExchangeRate) ToNative(amount token.Shares) (token.Native, error) {
	if r.ShareSupply == 0 {
		return 0, reverts.ErrInvalidAmount
	}
	out, err := amount.MulRatio(token.Ratio{
		Numerator:   uint64(r.NativeBalance),
		Denominator: uint64(r.ShareSupply),
	})
	return token.Native(out), err
}
