// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/meridian"
)

// Account tables. The "pool" slot is pinned to the instance address the
// Processor was built for; everything else is verified by the handler, with
// derived addresses re-computed from persisted state on every call.

func (*Initialize) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "manager"},
		{Name: "share_mint", Writable: true},
		{Name: "treasury", Writable: true},
		{Name: "developer", Writable: true},
		{Name: "reserve"},
	}
}

func (*Deposit) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "user", Signer: true, Writable: true},
		{Name: "recipient", Writable: true},
		{Name: "share_mint", Writable: true},
		{Name: "reserve", Writable: true},
	}
}

func (*Withdraw) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "user", Signer: true},
		{Name: "source_token", Writable: true},
		{Name: "share_mint", Writable: true},
		{Name: "voter"},
		{Name: "source_stake", Writable: true},
		{Name: "destination_stake", Writable: true},
	}
}

func (*StakeDeposit) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "maintainer", Signer: true},
		{Name: "voter"},
		{Name: "reserve", Writable: true},
		{Name: "stake_account_end", Writable: true},
		{Name: "stake_account_merge_into", Writable: true},
	}
}

func (*Unstake) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "maintainer", Signer: true},
		{Name: "voter"},
		{Name: "source_stake", Writable: true},
		{Name: "destination_unstake", Writable: true},
	}
}

func (*UpdateExchangeRate) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "reserve"},
		{Name: "share_mint"},
	}
}

func (*WithdrawInactiveStake) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "voter"},
		{Name: "reserve", Writable: true},
		{Name: "share_mint", Writable: true},
		{Name: "treasury", Writable: true},
		{Name: "developer", Writable: true},
	}
}

func (*ChangeRewardDistribution) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "manager", Signer: true},
		{Name: "treasury"},
		{Name: "developer"},
	}
}

func (*AddValidator) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "manager", Signer: true},
		{Name: "voter"},
		{Name: "fee_recipient"},
	}
}

func (*DeactivateValidator) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "manager", Signer: true},
		{Name: "voter"},
	}
}

func (*RemoveValidator) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "voter"},
	}
}

func (*AddMaintainer) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "manager", Signer: true},
		{Name: "maintainer"},
	}
}

func (*RemoveMaintainer) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "manager", Signer: true},
		{Name: "maintainer"},
	}
}

func (*MergeStake) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "voter"},
		{Name: "from_stake", Writable: true},
		{Name: "to_stake", Writable: true},
	}
}

func (*ClaimValidatorFee) table(instance *meridian.Address) []accounts.Meta {
	return []accounts.Meta{
		{Name: "pool", Writable: true, Fixed: instance},
		{Name: "voter"},
		{Name: "share_mint", Writable: true},
		{Name: "fee_recipient", Writable: true},
	}
}
