// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/log"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/metrics"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

var (
	logger = log.WithContext("pkg", "program")

	metricInstructionCount = metrics.LazyLoadCounterVec("instruction_count", []string{"instruction", "status"})
)

// Processor executes instructions for one pool instance. It holds no mutable
// state of its own; everything lives in the runtime store, so a Processor
// can be rebuilt from the two addresses at any time.
type Processor struct {
	program  meridian.Address
	instance meridian.Address
	env      runtime.Env
}

// New creates a Processor for the pool instance account, executing as the
// given program address.
func New(program, instance meridian.Address, env runtime.Env) *Processor {
	return &Processor{
		program:  program,
		instance: instance,
		env:      env,
	}
}

// Instance returns the pool instance account address.
func (p *Processor) Instance() meridian.Address {
	return p.instance
}

// ExecuteData decodes and executes a raw instruction payload.
func (p *Processor) ExecuteData(data []byte, infos []accounts.Info) error {
	inst, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	return p.Execute(inst, infos)
}

// Execute verifies the account list against the instruction's table and runs
// the handler. On error no instance state has been persisted; the caller is
// expected to discard any store writes the failed handler made, which is the
// transaction atomicity the chain provides.
func (p *Processor) Execute(inst Instruction, infos []accounts.Info) (err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "reverted"
			logger.Debug("instruction reverted", "instruction", inst.Name(), "err", err)
		}
		metricInstructionCount().AddWithLabel(1, map[string]string{
			"instruction": inst.Name(),
			"status":      status,
		})
	}()

	bound, err := accounts.Bind(inst.table(&p.instance), infos)
	if err != nil {
		return err
	}

	if init, ok := inst.(*Initialize); ok {
		return p.initialize(init, bound)
	}

	pool, instanceAccount, err := p.loadPool()
	if err != nil {
		return err
	}

	switch v := inst.(type) {
	case *Deposit:
		err = p.deposit(pool, v.Amount, bound)
	case *Withdraw:
		err = p.withdraw(pool, v.Amount, bound)
	case *StakeDeposit:
		err = p.stakeDeposit(pool, v.Amount, bound)
	case *Unstake:
		err = p.unstake(pool, v.Amount, bound)
	case *UpdateExchangeRate:
		err = p.updateExchangeRate(pool, bound)
	case *WithdrawInactiveStake:
		err = p.withdrawInactiveStake(pool, bound)
	case *ChangeRewardDistribution:
		err = p.changeRewardDistribution(pool, v.New, bound)
	case *AddValidator:
		err = p.addValidator(pool, bound)
	case *DeactivateValidator:
		err = p.deactivateValidator(pool, bound)
	case *RemoveValidator:
		err = p.removeValidator(pool, bound)
	case *AddMaintainer:
		err = p.addMaintainer(pool, bound)
	case *RemoveMaintainer:
		err = p.removeMaintainer(pool, bound)
	case *MergeStake:
		err = p.mergeStake(pool, bound)
	case *ClaimValidatorFee:
		err = p.claimValidatorFee(pool, bound)
	default:
		err = errors.WithMessagef(ErrInvalidInstruction, "no handler for %s", inst.Name())
	}
	if err != nil {
		return err
	}
	return p.savePool(pool, instanceAccount)
}

// loadPool deserializes the instance state. Handlers mutate the returned
// copy; nothing is persisted until savePool.
func (p *Processor) loadPool() (*state.Pool, *runtime.Account, error) {
	account, err := p.env.Store.Get(p.instance)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "load instance")
	}
	if account.Owner != p.program {
		return nil, nil, reverts.ErrInvalidOwner
	}
	pool, err := state.Deserialize(account.Data)
	if err != nil {
		return nil, nil, err
	}
	return pool, account, nil
}

func (p *Processor) savePool(pool *state.Pool, account *runtime.Account) error {
	data, err := pool.Serialize()
	if err != nil {
		return err
	}
	account.Data = data
	return p.env.Store.Put(p.instance, account)
}

// transferNative moves native balance between plain accounts, creating the
// destination if it does not exist yet.
func (p *Processor) transferNative(from, to meridian.Address, amount token.Native) error {
	source, err := p.env.Store.Get(from)
	if err != nil {
		return errors.WithMessage(err, "transfer source")
	}
	if source.Balance, err = source.Balance.Sub(amount); err != nil {
		return errors.WithMessagef(err, "transfer %v from %v", amount, from)
	}
	destination, err := p.env.Store.Get(to)
	if errors.Is(err, runtime.ErrNotFound) {
		destination = &runtime.Account{}
	} else if err != nil {
		return errors.WithMessage(err, "transfer destination")
	}
	if destination.Balance, err = destination.Balance.Add(amount); err != nil {
		return err
	}
	if err := p.env.Store.Put(from, source); err != nil {
		return err
	}
	return p.env.Store.Put(to, destination)
}

// checkTokenAccount verifies a holder account belongs to the given mint.
func (p *Processor) checkTokenAccount(address, mint meridian.Address) (*runtime.TokenAccount, error) {
	account, err := p.env.Token.Account(address)
	if err != nil {
		return nil, err
	}
	if account.Mint != mint {
		return nil, reverts.ErrInvalidTokenMint
	}
	return account, nil
}

// checkShareMint verifies the provided mint slot is the pool's share mint.
func checkShareMint(pool *state.Pool, bound accounts.Bound) error {
	if bound["share_mint"].Address != pool.ShareMint {
		return reverts.ErrInvalidTokenMint
	}
	return nil
}

// reserveAvailable is the reserve balance in excess of the rent exemption,
// the amount that can actually be delegated or paid out.
func (p *Processor) reserveAvailable() (token.Native, error) {
	account, err := p.env.Store.Get(p.ReserveAddress())
	if err != nil {
		return 0, errors.WithMessage(err, "load reserve")
	}
	exempt := p.env.Sysvars.Rent().ExemptBalance
	if account.Balance < exempt {
		return 0, nil
	}
	return account.Balance - exempt, nil
}

// validatorEntryAt looks a validator up by vote account, returning the entry
// and its registry index.
func validatorEntryAt(pool *state.Pool, voter meridian.Address) (*state.Validator, int, error) {
	for i := range pool.Validators.Entries {
		if pool.Validators.Entries[i].Address == voter {
			return &pool.Validators.Entries[i].Entry, i, nil
		}
	}
	return nil, 0, reverts.ErrInvalidAccountMember
}
