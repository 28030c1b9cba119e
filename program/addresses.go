// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"encoding/binary"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/meridian"
)

// Derivation roles. Changing any of these strands the accounts derived under
// the old role, so they are part of the wire protocol.
const (
	roleReserve        = "reserve_account"
	roleMintAuthority  = "mint_authority"
	roleStakeAuthority = "stake_authority"
	roleStakeAccount   = "validator_stake_account"
	roleUnstakeAccount = "validator_unstake_account"
)

// ReserveAddress is the derived account holding undelegated funds.
func (p *Processor) ReserveAddress() meridian.Address {
	return accounts.Derive(p.program, p.instance[:], []byte(roleReserve))
}

// MintAuthority is the derived authority over the share mint.
func (p *Processor) MintAuthority() meridian.Address {
	return accounts.Derive(p.program, p.instance[:], []byte(roleMintAuthority))
}

// StakeAuthority is the derived stake and withdraw authority over every
// stake account the instance owns.
func (p *Processor) StakeAuthority() meridian.Address {
	return accounts.Derive(p.program, p.instance[:], []byte(roleStakeAuthority))
}

// StakeAccountAddress is a validator's stake account at the given seed.
func (p *Processor) StakeAccountAddress(voter meridian.Address, seed uint64) meridian.Address {
	return p.seededAddress(voter, roleStakeAccount, seed)
}

// UnstakeAccountAddress is a validator's unstake account at the given seed.
func (p *Processor) UnstakeAccountAddress(voter meridian.Address, seed uint64) meridian.Address {
	return p.seededAddress(voter, roleUnstakeAccount, seed)
}

func (p *Processor) seededAddress(voter meridian.Address, role string, seed uint64) meridian.Address {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	return accounts.Derive(p.program, p.instance[:], voter[:], []byte(role), seedBytes[:])
}
