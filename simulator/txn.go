// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simulator

import (
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/runtime"
)

// Transactional runs fn and rolls every account, token and stake mutation
// back if it fails, the atomicity a chain transaction gets for free. Handler
// code can therefore bail out halfway through without cleanup.
func (s *Simulator) Transactional(fn func() error) error {
	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	accounts      map[meridian.Address]*runtime.Account
	mints         map[meridian.Address]mintState
	tokenAccounts map[meridian.Address]tokenAccountState
	stakes        map[meridian.Address]stakeState
}

func (s *Simulator) snapshot() *snapshot {
	snap := &snapshot{
		accounts:      make(map[meridian.Address]*runtime.Account),
		mints:         make(map[meridian.Address]mintState, len(s.mints)),
		tokenAccounts: make(map[meridian.Address]tokenAccountState, len(s.tokenAccounts)),
		stakes:        make(map[meridian.Address]stakeState, len(s.stakes)),
	}
	for _, address := range s.store.Addresses() {
		account, err := s.store.Get(address)
		if err != nil {
			continue
		}
		snap.accounts[address] = account
	}
	for address, mint := range s.mints {
		snap.mints[address] = *mint
	}
	for address, account := range s.tokenAccounts {
		snap.tokenAccounts[address] = *account
	}
	for address, st := range s.stakes {
		snap.stakes[address] = *st
	}
	return snap
}

func (s *Simulator) restore(snap *snapshot) {
	for _, address := range s.store.Addresses() {
		if _, ok := snap.accounts[address]; !ok {
			_ = s.store.Delete(address)
		}
	}
	for address, account := range snap.accounts {
		_ = s.store.Put(address, account)
	}

	s.mints = make(map[meridian.Address]*mintState, len(snap.mints))
	for address, mint := range snap.mints {
		m := mint
		s.mints[address] = &m
	}
	s.tokenAccounts = make(map[meridian.Address]*tokenAccountState, len(snap.tokenAccounts))
	for address, account := range snap.tokenAccounts {
		a := account
		s.tokenAccounts[address] = &a
	}
	s.stakes = make(map[meridian.Address]*stakeState, len(snap.stakes))
	for address, st := range snap.stakes {
		v := st
		s.stakes[address] = &v
	}
}
