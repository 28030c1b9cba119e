// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accounts verifies the account list passed to an instruction
// against the instruction's declared table, and derives the program-owned
// account addresses from instance state. Re-deriving and checking on every
// call is what makes handlers safe against callers substituting accounts.
package accounts

import (
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
)

// Info is one account as passed to an instruction.
type Info struct {
	Address  meridian.Address
	Signer   bool
	Writable bool
}

// Meta declares one slot of an instruction's account table.
type Meta struct {
	// Name the handler looks the bound account up under.
	Name string

	// Signer requires the transaction to be signed by this account.
	Signer bool

	// Writable requires the account to be passed writable.
	Writable bool

	// Fixed pins the slot to a known address, for sysvars and mints.
	Fixed *meridian.Address
}

// Bound is the verified account list, by table name.
type Bound map[string]Info

// Bind checks the provided infos against the table positionally. Missing
// accounts, excess accounts, flag mismatches and fixed-address mismatches
// all abort the instruction.
func Bind(table []Meta, infos []Info) (Bound, error) {
	if len(infos) < len(table) {
		return nil, reverts.ErrInvalidAccountInfo
	}
	if len(infos) > len(table) {
		return nil, reverts.ErrTooManyAccountKeys
	}
	bound := make(Bound, len(table))
	for i, meta := range table {
		info := infos[i]
		if meta.Signer && !info.Signer {
			return nil, reverts.ErrSignatureMissing
		}
		if meta.Writable && !info.Writable {
			return nil, reverts.ErrInvalidAccountInfo
		}
		if meta.Fixed != nil && *meta.Fixed != info.Address {
			return nil, reverts.ErrInvalidAccountInfo
		}
		bound[meta.Name] = info
	}
	return bound, nil
}

// CheckDerived verifies a provided address equals the re-derived one.
func CheckDerived(expected, provided meridian.Address) error {
	if expected != provided {
		return reverts.ErrInvalidDerivedAccount
	}
	return nil
}
