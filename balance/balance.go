// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package balance computes how stake should be distributed over the
// validator registry. The pool targets a uniform distribution over active
// validators; maintainers move stake towards the targets one operation at a
// time, and the deposit and withdraw paths enforce that they do not make the
// distribution worse.
package balance

import (
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

// Targets returns the target stake balance per registry entry, in registry
// order. Inactive validators target zero. The targets sum to undelegated
// plus the active validators' current stake, exactly: the flooring remainder
// is handed out one unit at a time from the front of the registry. That
// biases early entries by at most one unit, which is far below both the
// transaction fee and the minimum stake amount.
func Targets(undelegated token.Native, validators *state.Validators) ([]token.Native, error) {
	numActive := uint64(0)
	total := undelegated
	for i := range validators.Entries {
		v := &validators.Entries[i].Entry
		if !v.Active {
			continue
		}
		numActive++
		var err error
		if total, err = total.Add(v.StakeAccountsBalance); err != nil {
			return nil, err
		}
	}
	if numActive == 0 {
		return nil, reverts.ErrNoActiveValidators
	}

	targets := make([]token.Native, len(validators.Entries))
	distributed := token.Native(0)
	for i := range validators.Entries {
		if !validators.Entries[i].Entry.Active {
			continue
		}
		targets[i] = total / token.Native(numActive)
		distributed += targets[i]
	}

	remainder := total - distributed
	for i := range validators.Entries {
		if remainder == 0 {
			break
		}
		if !validators.Entries[i].Entry.Active {
			continue
		}
		targets[i]++
		remainder--
	}

	// Invariant: targets absorb the input exactly.
	check := token.Native(0)
	for _, t := range targets {
		check += t
	}
	if check != total {
		return nil, reverts.ErrCalculation
	}
	return targets, nil
}

// FurthestBelowTarget returns the index of the validator whose stake balance
// is furthest below its target, and the shortfall. The first occurrence wins
// ties, so concurrent stake deposits against the same snapshot agree on the
// winner. A zero shortfall means every validator is at or above target.
func FurthestBelowTarget(validators *state.Validators, targets []token.Native) (int, token.Native) {
	index := 0
	amount := token.Native(0)
	for i := range validators.Entries {
		current := validators.Entries[i].Entry.StakeAccountsBalance
		var below token.Native
		if targets[i] > current {
			below = targets[i] - current
		}
		if below > amount {
			amount = below
			index = i
		}
	}
	return index, amount
}

// MostAboveTarget returns the index of the validator whose effective stake is
// furthest above its target, and the excess. Unstaking that excess moves the
// distribution towards the targets fastest.
func MostAboveTarget(validators *state.Validators, targets []token.Native) (int, token.Native, error) {
	index := 0
	amount := token.Native(0)
	for i := range validators.Entries {
		effective, err := validators.Entries[i].Entry.EffectiveStakeBalance()
		if err != nil {
			return 0, 0, err
		}
		var above token.Native
		if effective > targets[i] {
			above = effective - targets[i]
		}
		if above > amount {
			amount = above
			index = i
		}
	}
	return index, amount, nil
}

// ValidatorToWithdrawFrom returns the index of the validator with the most
// effective stake. Withdrawals must come from that one, so they also move
// the distribution towards uniform.
func ValidatorToWithdrawFrom(validators *state.Validators) (int, error) {
	if validators.Len() == 0 {
		return 0, reverts.ErrNoActiveValidators
	}
	index := 0
	best := token.Native(0)
	for i := range validators.Entries {
		effective, err := validators.Entries[i].Entry.EffectiveStakeBalance()
		if err != nil {
			return 0, err
		}
		if i == 0 || effective > best {
			best = effective
			index = i
		}
	}
	return index, nil
}

// MaxEffectiveStake returns the largest effective stake in the registry.
func MaxEffectiveStake(validators *state.Validators) (token.Native, error) {
	best := token.Native(0)
	for i := range validators.Entries {
		effective, err := validators.Entries[i].Entry.EffectiveStakeBalance()
		if err != nil {
			return 0, err
		}
		if effective > best {
			best = effective
		}
	}
	return best, nil
}
