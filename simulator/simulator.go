// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package simulator provides an in-process chain for tests and tooling: an
// account store plus simplified staking and token primitives behind the
// runtime interfaces. Stake activation and deactivation complete at the next
// epoch boundary, which is all the program's state machine depends on.
package simulator

import (
	"math"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/runtime/accountdb"
	"github.com/meridian-pool/meridian/token"
)

const slotsPerEpoch = 432_000

const neverEpoch = math.MaxUint64

// Simulator is a single-threaded in-process chain.
type Simulator struct {
	store *accountdb.Memory
	clock runtime.Clock
	rent  runtime.Rent

	mints         map[meridian.Address]*mintState
	tokenAccounts map[meridian.Address]*tokenAccountState
	stakes        map[meridian.Address]*stakeState
}

type mintState struct {
	authority meridian.Address
	supply    uint64
}

type tokenAccountState struct {
	mint   meridian.Address
	owner  meridian.Address
	amount uint64
}

type stakeState struct {
	voter             meridian.Address
	authority         meridian.Address
	activationEpoch   uint64
	deactivationEpoch uint64
	creditsObserved   uint64
}

// New creates a simulator at epoch 0 with the given rent exemption.
func New(rentExempt token.Native) *Simulator {
	return &Simulator{
		store:         accountdb.NewMem(),
		rent:          runtime.Rent{ExemptBalance: rentExempt},
		mints:         make(map[meridian.Address]*mintState),
		tokenAccounts: make(map[meridian.Address]*tokenAccountState),
		stakes:        make(map[meridian.Address]*stakeState),
	}
}

// Env returns the runtime environment backed by this simulator.
func (s *Simulator) Env() runtime.Env {
	return runtime.Env{
		Store:   s,
		Stake:   s,
		Token:   s,
		Sysvars: s,
	}
}

// Clock implements runtime.Sysvars.
func (s *Simulator) Clock() runtime.Clock { return s.clock }

// Rent implements runtime.Sysvars.
func (s *Simulator) Rent() runtime.Rent { return s.rent }

// AdvanceEpoch moves the clock past the next epoch boundary, completing all
// pending activations and deactivations.
func (s *Simulator) AdvanceEpoch() {
	s.clock.Epoch++
	s.clock.Slot += slotsPerEpoch
}

// AdvanceSlots moves the clock within the current epoch.
func (s *Simulator) AdvanceSlots(n uint64) {
	s.clock.Slot += n
}

// Get implements runtime.Store.
func (s *Simulator) Get(address meridian.Address) (*runtime.Account, error) {
	return s.store.Get(address)
}

// Put implements runtime.Store.
func (s *Simulator) Put(address meridian.Address, account *runtime.Account) error {
	return s.store.Put(address, account)
}

// Delete implements runtime.Store.
func (s *Simulator) Delete(address meridian.Address) error {
	return s.store.Delete(address)
}

// CreateAccount funds a plain account, creating it if needed.
func (s *Simulator) CreateAccount(address meridian.Address, balance token.Native) error {
	account, err := s.store.Get(address)
	if err != nil {
		account = &runtime.Account{}
	}
	if account.Balance, err = account.Balance.Add(balance); err != nil {
		return err
	}
	return s.store.Put(address, account)
}

// Balance returns an account's native balance, zero if it does not exist.
func (s *Simulator) Balance(address meridian.Address) token.Native {
	account, err := s.store.Get(address)
	if err != nil {
		return 0
	}
	return account.Balance
}

// PayReward adds balance to an account outside any program flow, the way
// the chain pays staking rewards and donors make donations.
func (s *Simulator) PayReward(address meridian.Address, amount token.Native) error {
	return s.CreateAccount(address, amount)
}
