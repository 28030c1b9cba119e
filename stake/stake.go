// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stake models the pool's view of an external stake account: its
// balance split over the activation lifecycle, and the rules for when two
// accounts can be merged by the staking primitive.
package stake

import (
	"github.com/meridian-pool/meridian/token"
)

// Balance splits a stake account balance into mutually exclusive lifecycle
// categories. The categories sum to the account's full balance; in
// particular, Active excludes Deactivating.
type Balance struct {
	// Inactive is undelegated balance, including the rent-exempt reserve.
	Inactive token.Native

	// Activating is delegated this epoch, earning nothing yet.
	Activating token.Native

	// Active is earning rewards.
	Active token.Native

	// Deactivating stops earning at the end of this epoch.
	Deactivating token.Native
}

// Total returns the full account balance.
func (b Balance) Total() (token.Native, error) {
	return token.SumNative(b.Inactive, b.Activating, b.Active, b.Deactivating)
}

// Account is the observed state of one stake account, together with the
// derivation seed it was created at.
type Account struct {
	Balance Balance

	// CreditsObserved is the vote credit counter the staking primitive uses
	// to settle rewards; accounts with diverged counters cannot merge.
	CreditsObserved uint64

	// ActivationEpoch is the epoch the delegation was created in.
	ActivationEpoch uint64

	// Seed the account was derived at.
	Seed uint64
}

// IsActive returns true when all delegated balance is earning.
func (a *Account) IsActive() bool {
	return a.Balance.Active > 0 && a.Balance.Activating == 0 && a.Balance.Deactivating == 0
}

// IsInactive returns true when nothing is delegated.
func (a *Account) IsInactive() bool {
	return a.Balance.Active == 0 && a.Balance.Activating == 0 && a.Balance.Deactivating == 0
}

// IsActivating returns true while a delegation is warming up.
func (a *Account) IsActivating() bool {
	return a.Balance.Activating > 0
}

// CanMerge returns true if mergeFrom can be merged into this account by the
// staking primitive. The relation is symmetric even where the primitive's
// documentation suggests otherwise. Both accounts are assumed to be
// delegated to the same validator.
func (a *Account) CanMerge(mergeFrom *Account) bool {
	// two deactivated stakes
	if a.IsInactive() && mergeFrom.IsInactive() {
		return true
	}
	// an inactive stake into an activating one
	if (mergeFrom.IsInactive() && a.IsActivating()) || (a.IsInactive() && mergeFrom.IsActivating()) {
		return true
	}
	if a.CreditsObserved == mergeFrom.CreditsObserved {
		// two activated stakes
		if a.IsActive() && mergeFrom.IsActive() {
			return true
		}
		// two activating accounts that share an activation epoch
		if a.IsActivating() && mergeFrom.IsActivating() && a.ActivationEpoch == mergeFrom.ActivationEpoch {
			return true
		}
	}
	return false
}
