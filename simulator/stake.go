// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simulator

import (
	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/stake"
	"github.com/meridian-pool/meridian/token"
)

// The staking primitive. The lifecycle is simplified to whole epochs: a
// delegation activates at the first epoch boundary after Delegate, and a
// deactivation completes at the first boundary after Deactivate. Vote
// credits are modeled as the activation epoch, so same-epoch delegations
// share a credit checkpoint and cross-epoch ones do not.

// Delegate implements runtime.Stake.
func (s *Simulator) Delegate(account, voter, authority meridian.Address) error {
	if _, ok := s.stakes[account]; ok {
		return reverts.ErrAlreadyInUse
	}
	stored, err := s.store.Get(account)
	if err != nil {
		return errors.WithMessage(err, "delegate")
	}
	if stored.Balance <= s.rent.ExemptBalance {
		return reverts.ErrInvalidAmount
	}
	s.stakes[account] = &stakeState{
		voter:             voter,
		authority:         authority,
		activationEpoch:   s.clock.Epoch,
		deactivationEpoch: neverEpoch,
		creditsObserved:   s.clock.Epoch,
	}
	return nil
}

// Deactivate implements runtime.Stake.
func (s *Simulator) Deactivate(account meridian.Address) error {
	st, ok := s.stakes[account]
	if !ok {
		return reverts.ErrWrongStakeState
	}
	if st.deactivationEpoch != neverEpoch {
		return reverts.ErrWrongStakeState
	}
	st.deactivationEpoch = s.clock.Epoch
	return nil
}

// Split implements runtime.Stake.
func (s *Simulator) Split(source, destination meridian.Address, amount token.Native) error {
	st, ok := s.stakes[source]
	if !ok {
		return reverts.ErrWrongStakeState
	}
	if _, ok := s.stakes[destination]; ok {
		return reverts.ErrAlreadyInUse
	}
	if err := s.moveNative(source, destination, amount); err != nil {
		return err
	}
	split := *st
	s.stakes[destination] = &split
	return nil
}

// Merge implements runtime.Stake.
func (s *Simulator) Merge(source, destination meridian.Address) error {
	from, err := s.Observe(source)
	if err != nil {
		return err
	}
	into, err := s.Observe(destination)
	if err != nil {
		return err
	}
	if !into.CanMerge(from) {
		return reverts.ErrWrongStakeState
	}
	total, err := from.Balance.Total()
	if err != nil {
		return err
	}
	if err := s.moveNative(source, destination, total); err != nil {
		return err
	}
	delete(s.stakes, source)
	return s.store.Delete(source)
}

// Withdraw implements runtime.Stake. Only inactive balance may leave a stake
// account; a fully drained account is closed.
func (s *Simulator) Withdraw(source, destination meridian.Address, amount token.Native) error {
	observed, err := s.Observe(source)
	if err != nil {
		return err
	}
	if amount > observed.Balance.Inactive {
		return reverts.ErrInvalidAmount
	}
	if err := s.moveNative(source, destination, amount); err != nil {
		return err
	}
	account, err := s.store.Get(source)
	if err != nil {
		return err
	}
	if account.Balance == 0 {
		delete(s.stakes, source)
		return s.store.Delete(source)
	}
	return nil
}

// SetAuthority implements runtime.Stake.
func (s *Simulator) SetAuthority(account, newAuthority meridian.Address) error {
	st, ok := s.stakes[account]
	if !ok {
		return reverts.ErrWrongStakeState
	}
	st.authority = newAuthority
	return nil
}

// Observe implements runtime.Stake.
func (s *Simulator) Observe(account meridian.Address) (*stake.Account, error) {
	stored, err := s.store.Get(account)
	if err != nil {
		return nil, errors.WithMessage(err, "observe")
	}
	balance := stake.Balance{Inactive: stored.Balance}

	st, ok := s.stakes[account]
	if !ok {
		return &stake.Account{Balance: balance}, nil
	}

	delegated := token.Native(0)
	if stored.Balance > s.rent.ExemptBalance {
		delegated = stored.Balance - s.rent.ExemptBalance
	}
	switch {
	case s.clock.Epoch > st.deactivationEpoch:
		// fully deactivated, everything is inactive
	case s.clock.Epoch == st.deactivationEpoch:
		balance = stake.Balance{Inactive: s.rent.ExemptBalance, Deactivating: delegated}
	case s.clock.Epoch == st.activationEpoch:
		balance = stake.Balance{Inactive: s.rent.ExemptBalance, Activating: delegated}
	default:
		balance = stake.Balance{Inactive: s.rent.ExemptBalance, Active: delegated}
	}
	return &stake.Account{
		Balance:         balance,
		CreditsObserved: st.creditsObserved,
		ActivationEpoch: st.activationEpoch,
	}, nil
}

// StakeAuthority returns a stake account's current authority, for tests.
func (s *Simulator) StakeAuthority(account meridian.Address) (meridian.Address, bool) {
	st, ok := s.stakes[account]
	if !ok {
		return meridian.Address{}, false
	}
	return st.authority, true
}

func (s *Simulator) moveNative(from, to meridian.Address, amount token.Native) error {
	source, err := s.store.Get(from)
	if err != nil {
		return err
	}
	if source.Balance, err = source.Balance.Sub(amount); err != nil {
		return err
	}
	destination, err := s.store.Get(to)
	if err != nil {
		destination = &runtime.Account{}
	}
	if destination.Balance, err = destination.Balance.Add(amount); err != nil {
		return err
	}
	if err := s.store.Put(from, source); err != nil {
		return err
	}
	return s.store.Put(to, destination)
}
