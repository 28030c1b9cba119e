// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

// SeedRange is the half-open range [Begin, End) of derivation seeds for which
// a validator's stake or unstake accounts exist. Both ends only ever grow:
// accounts are created at End and consumed at Begin.
type SeedRange struct {
	Begin uint64
	End   uint64
}

// Count returns the number of live accounts in the range.
func (r SeedRange) Count() uint64 {
	return r.End - r.Begin
}

func (r SeedRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Begin, r.End)
}

// Validator is a registry entry, keyed by the validator's vote account.
type Validator struct {
	// FeeCredit is pool token value the validator earned but has not claimed.
	FeeCredit token.Shares

	// FeeAddress is the pool token account fee credit is minted to on claim.
	FeeAddress meridian.Address

	// StakeSeeds is the range of seeds of the validator's stake accounts.
	StakeSeeds SeedRange

	// UnstakeSeeds is the range of seeds of the validator's unstake accounts,
	// holding deactivating stake. At most meridian.MaxUnstakeAccounts live.
	UnstakeSeeds SeedRange

	// StakeAccountsBalance is the sum of all stake account balances, including
	// unstake accounts. Refreshed by WithdrawInactiveStake; an estimate in
	// between, because rewards and donations arrive outside the program.
	StakeAccountsBalance token.Native

	// UnstakeAccountsBalance is the sum of the unstake account balances, an
	// estimate by the same token.
	UnstakeAccountsBalance token.Native

	// Active indicates the validator accepts new stake. Deactivation is
	// one-way; the entry is removed once all balance is gone.
	Active bool
}

// NewValidator creates an active entry with the given fee address.
func NewValidator(feeAddress meridian.Address) Validator {
	return Validator{
		FeeAddress: feeAddress,
		Active:     true,
	}
}

// EffectiveStakeBalance is the delegated balance that still counts towards
// the balancing targets, so excluding deactivating stake.
func (v *Validator) EffectiveStakeBalance() (token.Native, error) {
	return v.StakeAccountsBalance.Sub(v.UnstakeAccountsBalance)
}

// CheckCanBeRemoved verifies the entry no longer carries any obligations.
func (v *Validator) CheckCanBeRemoved() error {
	if v.Active {
		return reverts.ErrValidatorShouldNotHaveAnyBalance
	}
	if v.StakeAccountsBalance != 0 || v.UnstakeAccountsBalance != 0 {
		return reverts.ErrValidatorShouldNotHaveAnyBalance
	}
	if v.StakeSeeds.Count() != 0 || v.UnstakeSeeds.Count() != 0 {
		return reverts.ErrValidatorShouldNotHaveAnyBalance
	}
	if v.FeeCredit != 0 {
		return reverts.ErrValidatorHasUnclaimedCredit
	}
	return nil
}

// Validators is the registry stored in the instance.
type Validators = AccountMap[Validator]
