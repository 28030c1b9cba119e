// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds the persisted instance state and the pure logic over
// it: the exchange rate, the validator registry, fee splitting and the
// on-chain counters. Nothing in here touches the runtime.
package state

import (
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

// Version current layout version of the instance account.
const Version uint8 = 1

// Pool is the root instance state, stored in a single account whose size is
// fixed at Initialize from the registry capacities.
type Pool struct {
	// Version of the account layout.
	Version uint8

	// Manager may execute the administrative operations.
	Manager meridian.Address

	// ShareMint is the mint of the pool token.
	ShareMint meridian.Address

	// ExchangeRate snapshot used by all conversions this epoch.
	ExchangeRate ExchangeRate

	RewardDistribution RewardDistribution
	FeeRecipients      FeeRecipients
	Metrics            Metrics

	Maintainers AccountSet
	Validators  Validators
}

// New creates the state for a fresh instance.
func New(
	manager meridian.Address,
	shareMint meridian.Address,
	distribution RewardDistribution,
	recipients FeeRecipients,
	maxValidators uint32,
	maxMaintainers uint32,
) *Pool {
	return &Pool{
		Version:            Version,
		Manager:            manager,
		ShareMint:          shareMint,
		RewardDistribution: distribution,
		FeeRecipients:      recipients,
		Maintainers:        NewAccountSet(maxMaintainers),
		Validators:         NewAccountMap[Validator](maxValidators),
	}
}

// CheckManager verifies the signer is the manager.
func (p *Pool) CheckManager(signer meridian.Address) error {
	if signer != p.Manager {
		return reverts.ErrInvalidManager
	}
	return nil
}

// CheckMaintainer verifies the signer is a registered maintainer.
func (p *Pool) CheckMaintainer(signer meridian.Address) error {
	if !p.Maintainers.Contains(signer) {
		return reverts.ErrInvalidMaintainer
	}
	return nil
}

// CheckExchangeRateCurrent verifies the rate was computed in the given epoch.
// Operations that convert between units must not run on a stale rate.
func (p *Pool) CheckExchangeRateCurrent(epoch uint64) error {
	if p.ExchangeRate.ComputedInEpoch < epoch {
		return reverts.ErrExchangeRateNotUpdated
	}
	return nil
}

// TotalNativeBalance computes the native amount this instance manages: the
// available reserve plus everything tracked in stake accounts. Unobserved
// rewards in the stake accounts are not included.
func (p *Pool) TotalNativeBalance(reserveAvailable token.Native) (token.Native, error) {
	total := reserveAvailable
	for i := range p.Validators.Entries {
		var err error
		total, err = total.Add(p.Validators.Entries[i].Entry.StakeAccountsBalance)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// TotalShareSupply is the minted supply plus unclaimed validator fee credit.
func (p *Pool) TotalShareSupply(mintedSupply token.Shares) (token.Shares, error) {
	total := mintedSupply
	for i := range p.Validators.Entries {
		var err error
		total, err = total.Add(p.Validators.Entries[i].Entry.FeeCredit)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
