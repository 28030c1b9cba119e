// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime declares what the program needs from the chain it runs on:
// an account store, the staking and token primitives, and the clock and rent
// sysvars. The program never assumes anything about these beyond the
// contracts stated here; the simulator package provides an in-process
// implementation for tests and tooling.
package runtime

import (
	"errors"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/stake"
	"github.com/meridian-pool/meridian/token"
)

// ErrNotFound is returned by Store.Get for a missing account.
var ErrNotFound = errors.New("account not found")

// Account is a stored account: native balance, owning program and data.
type Account struct {
	Owner   meridian.Address
	Balance token.Native
	Data    []byte
}

// Store provides access to accounts by address. Implementations must make
// Put visible to subsequent Gets within the same instruction.
type Store interface {
	// Get returns the account, or ErrNotFound.
	Get(address meridian.Address) (*Account, error)

	// Put creates or replaces the account.
	Put(address meridian.Address, account *Account) error

	// Delete removes the account. Deleting a missing account is an error.
	Delete(address meridian.Address) error
}

// Clock is the chain time sysvar.
type Clock struct {
	Epoch uint64
	Slot  uint64
}

// Rent is the account rent sysvar. An account whose balance drops below the
// exemption threshold is garbage collected by the chain, so the program
// keeps every account it owns at or above it.
type Rent struct {
	// ExemptBalance is the rent exemption threshold for program accounts.
	ExemptBalance token.Native
}

// Sysvars provides the current sysvar values.
type Sysvars interface {
	Clock() Clock
	Rent() Rent
}

// Stake is the external staking primitive. All balance-moving calls operate
// on accounts in the Store; errors pass through to the caller unchanged.
type Stake interface {
	// Delegate delegates the full balance of account to the voter.
	Delegate(account, voter meridian.Address, authority meridian.Address) error

	// Deactivate starts deactivation of the account's delegated stake.
	Deactivate(account meridian.Address) error

	// Split moves amount from source into a new stake account at destination,
	// keeping the delegation state.
	Split(source, destination meridian.Address, amount token.Native) error

	// Merge merges source into destination and closes source. The accounts
	// must satisfy the stake.Account mergeability rules.
	Merge(source, destination meridian.Address) error

	// Withdraw moves inactive balance out of a stake account into a plain
	// account, closing the stake account if the balance reaches zero.
	Withdraw(source, destination meridian.Address, amount token.Native) error

	// SetAuthority hands the stake and withdraw authority to newAuthority.
	SetAuthority(account, newAuthority meridian.Address) error

	// Observe returns the lifecycle view of a stake account at the current
	// clock.
	Observe(account meridian.Address) (*stake.Account, error)
}

// TokenAccount is the token primitive's view of a holder account.
type TokenAccount struct {
	Mint   meridian.Address
	Owner  meridian.Address
	Amount uint64
}

// Token is the external token primitive. Amounts are raw u64; the caller
// knows which unit a mint denominates.
type Token interface {
	// InitializeMint creates a mint controlled by authority.
	InitializeMint(mint, authority meridian.Address) error

	// InitializeAccount creates a holder account for mint, owned by owner.
	InitializeAccount(account, mint, owner meridian.Address) error

	// MintTo mints amount to destination. Must be called by mint authority.
	MintTo(mint, destination meridian.Address, amount uint64) error

	// Burn destroys amount from source.
	Burn(mint, source meridian.Address, amount uint64) error

	// Transfer moves amount between holder accounts of the same mint.
	Transfer(source, destination meridian.Address, amount uint64) error

	// Supply returns a mint's total supply.
	Supply(mint meridian.Address) (uint64, error)

	// Account returns a holder account's state.
	Account(address meridian.Address) (*TokenAccount, error)
}

// Env bundles everything a program invocation runs against.
type Env struct {
	Store   Store
	Stake   Stake
	Token   Token
	Sysvars Sysvars
}
