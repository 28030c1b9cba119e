// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simulator

import (
	"math/bits"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
)

// The token primitive. Mints and holder accounts live in plain maps; the
// program only ever sees them through the runtime.Token interface.

// InitializeMint implements runtime.Token.
func (s *Simulator) InitializeMint(mint, authority meridian.Address) error {
	if _, ok := s.mints[mint]; ok {
		return reverts.ErrAlreadyInUse
	}
	s.mints[mint] = &mintState{authority: authority}
	return nil
}

// InitializeAccount implements runtime.Token.
func (s *Simulator) InitializeAccount(account, mint, owner meridian.Address) error {
	if _, ok := s.tokenAccounts[account]; ok {
		return reverts.ErrAlreadyInUse
	}
	if _, ok := s.mints[mint]; !ok {
		return reverts.ErrInvalidTokenMint
	}
	s.tokenAccounts[account] = &tokenAccountState{mint: mint, owner: owner}
	return nil
}

// MintTo implements runtime.Token.
func (s *Simulator) MintTo(mint, destination meridian.Address, amount uint64) error {
	m, ok := s.mints[mint]
	if !ok {
		return reverts.ErrInvalidTokenMint
	}
	account, ok := s.tokenAccounts[destination]
	if !ok || account.mint != mint {
		return reverts.ErrInvalidTokenAccount
	}
	supply, carry := bits.Add64(m.supply, amount, 0)
	if carry != 0 {
		return reverts.ErrCalculation
	}
	held, carry := bits.Add64(account.amount, amount, 0)
	if carry != 0 {
		return reverts.ErrCalculation
	}
	m.supply, account.amount = supply, held
	return nil
}

// Burn implements runtime.Token.
func (s *Simulator) Burn(mint, source meridian.Address, amount uint64) error {
	m, ok := s.mints[mint]
	if !ok {
		return reverts.ErrInvalidTokenMint
	}
	account, ok := s.tokenAccounts[source]
	if !ok || account.mint != mint {
		return reverts.ErrInvalidTokenAccount
	}
	if account.amount < amount || m.supply < amount {
		return reverts.ErrInvalidAmount
	}
	account.amount -= amount
	m.supply -= amount
	return nil
}

// Transfer implements runtime.Token.
func (s *Simulator) Transfer(source, destination meridian.Address, amount uint64) error {
	from, ok := s.tokenAccounts[source]
	if !ok {
		return reverts.ErrInvalidTokenAccount
	}
	to, ok := s.tokenAccounts[destination]
	if !ok || to.mint != from.mint {
		return reverts.ErrInvalidTokenAccount
	}
	if from.amount < amount {
		return reverts.ErrInvalidAmount
	}
	held, carry := bits.Add64(to.amount, amount, 0)
	if carry != 0 {
		return reverts.ErrCalculation
	}
	from.amount -= amount
	to.amount = held
	return nil
}

// Supply implements runtime.Token.
func (s *Simulator) Supply(mint meridian.Address) (uint64, error) {
	m, ok := s.mints[mint]
	if !ok {
		return 0, reverts.ErrInvalidTokenMint
	}
	return m.supply, nil
}

// Account implements runtime.Token.
func (s *Simulator) Account(address meridian.Address) (*runtime.TokenAccount, error) {
	account, ok := s.tokenAccounts[address]
	if !ok {
		return nil, reverts.ErrInvalidTokenAccount
	}
	return &runtime.TokenAccount{
		Mint:   account.mint,
		Owner:  account.owner,
		Amount: account.amount,
	}, nil
}
