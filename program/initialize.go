// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/state"
)

// initialize creates the instance account, the share mint and the fee
// recipient token accounts. The derived reserve must already exist and be
// rent exempt, so it cannot be garbage collected from under the pool.
func (p *Processor) initialize(inst *Initialize, bound accounts.Bound) error {
	if err := inst.RewardDistribution.Check(); err != nil {
		return err
	}

	if _, err := p.env.Store.Get(p.instance); err == nil {
		return reverts.ErrAlreadyInUse
	} else if !errors.Is(err, runtime.ErrNotFound) {
		return err
	}

	if err := accounts.CheckDerived(p.ReserveAddress(), bound["reserve"].Address); err != nil {
		return err
	}
	reserve, err := p.env.Store.Get(bound["reserve"].Address)
	if errors.Is(err, runtime.ErrNotFound) {
		return reverts.ErrReserveNotRentExempt
	} else if err != nil {
		return err
	}
	if reserve.Balance < p.env.Sysvars.Rent().ExemptBalance {
		return reverts.ErrReserveNotRentExempt
	}

	manager := bound["manager"].Address
	shareMint := bound["share_mint"].Address
	treasury := bound["treasury"].Address
	developer := bound["developer"].Address

	if err := p.env.Token.InitializeMint(shareMint, p.MintAuthority()); err != nil {
		return err
	}
	if err := p.env.Token.InitializeAccount(treasury, shareMint, manager); err != nil {
		return err
	}
	if err := p.env.Token.InitializeAccount(developer, shareMint, manager); err != nil {
		return err
	}

	pool := state.New(
		manager,
		shareMint,
		inst.RewardDistribution,
		state.FeeRecipients{TreasuryAccount: treasury, DeveloperAccount: developer},
		inst.MaxValidators,
		inst.MaxMaintainers,
	)
	data, err := pool.Serialize()
	if err != nil {
		return err
	}
	if err := p.env.Store.Put(p.instance, &runtime.Account{Owner: p.program, Data: data}); err != nil {
		return err
	}

	logger.Info("pool initialized",
		"instance", p.instance,
		"manager", manager,
		"maxValidators", inst.MaxValidators,
		"maxMaintainers", inst.MaxMaintainers,
	)
	return nil
}
