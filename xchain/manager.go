// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xchain

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
	logger = log.WithContext("pkg", "xchain")

	metricRewardsSold       = metrics.LazyLoadCounter("wrap_rewards_sold_count")
	metricProceedsForwarded = metrics.LazyLoadCounter("wrap_proceeds_forwarded_count")
)

// Derivation roles of the wrap instance. Part of the wire protocol.
const (
	roleWrapReserve   = "wrap_reserve_account"
	roleWrapAuthority = "wrap_authority"
	roleProceeds      = "wrap_proceeds_account"
)

// Swap is an external pool trading pool shares for the proceeds token.
type Swap interface {
	// Price quotes the current price in proceeds units per whole share.
	Price() (uint64, error)

	// Sell trades amount of shares out of source for at least minOut
	// proceeds units into destination, returning the amount received.
	Sell(source, destination meridian.Address, amount token.Shares, minOut uint64) (uint64, error)
}

// Bridge forwards proceeds tokens to an address on another chain.
type Bridge interface {
	Forward(source meridian.Address, destination meridian.Bytes32, amount uint64) error
}

// Manager executes wrap instance operations. Like the pool processor it holds
// no mutable state; everything lives in the runtime store.
type Manager struct {
	program     meridian.Address
	instance    meridian.Address
	poolProgram meridian.Address
	env         runtime.Env
	swap        Swap
	bridge      Bridge
}

// New creates a Manager for the wrap instance account, executing as the given
// program address. poolProgram is the owner the bound pool account must have.
func New(program, instance, poolProgram meridian.Address, env runtime.Env, swap Swap, bridge Bridge) *Manager {
	return &Manager{
		program:     program,
		instance:    instance,
		poolProgram: poolProgram,
		env:         env,
		swap:        swap,
		bridge:      bridge,
	}
}

// ReserveAddress is the derived token account holding the wrapped deposits'
// pool shares.
func (m *Manager) ReserveAddress() meridian.Address {
	return accounts.Derive(m.program, m.instance[:], []byte(roleWrapReserve))
}

// Authority is the derived authority over the wrapped mint and both derived
// token accounts.
func (m *Manager) Authority() meridian.Address {
	return accounts.Derive(m.program, m.instance[:], []byte(roleWrapAuthority))
}

// ProceedsAddress is the derived token account collecting swap proceeds until
// they are forwarded over the bridge.
func (m *Manager) ProceedsAddress() meridian.Address {
	return accounts.Derive(m.program, m.instance[:], []byte(roleProceeds))
}

// Initialize creates the wrap instance bound to the given pool: the wrapped
// mint under the derived authority, the derived share reserve and the derived
// proceeds account.
func (m *Manager) Initialize(manager, pool, wrappedMint, proceedsMint meridian.Address, destination meridian.Bytes32, minOutBps uint64) error {
	if _, err := m.env.Store.Get(m.instance); !errors.Is(err, runtime.ErrNotFound) {
		if err != nil {
			return errors.WithMessage(err, "check instance")
		}
		return reverts.ErrAlreadyInUse
	}
	poolState, err := m.loadPool(pool)
	if err != nil {
		return err
	}

	authority := m.Authority()
	if err := m.env.Token.InitializeMint(wrappedMint, authority); err != nil {
		return errors.WithMessage(err, "initialize wrapped mint")
	}
	if err := m.env.Token.InitializeAccount(m.ReserveAddress(), poolState.ShareMint, authority); err != nil {
		return errors.WithMessage(err, "initialize share reserve")
	}
	if err := m.env.Token.InitializeAccount(m.ProceedsAddress(), proceedsMint, authority); err != nil {
		return errors.WithMessage(err, "initialize proceeds account")
	}

	wrap := &State{
		Version:      Version,
		Manager:      manager,
		Pool:         pool,
		ShareMint:    poolState.ShareMint,
		WrappedMint:  wrappedMint,
		ProceedsMint: proceedsMint,
		Destination:  destination,
		MinOutBps:    minOutBps,
	}
	logger.Info("wrap instance initialized",
		"instance", m.instance,
		"pool", pool,
		"minOutBps", minOutBps,
	)
	return m.save(wrap, &runtime.Account{Owner: m.program})
}

// Deposit locks the user's pool shares in the reserve and mints wrapped
// tokens for their current native value. The exchange rate must have been
// updated this epoch so the peg is computed against the live rate.
func (m *Manager) Deposit(user, source, recipient meridian.Address, amount token.Shares) error {
	if amount == 0 {
		return reverts.ErrInvalidAmount
	}
	wrap, instanceAccount, err := m.load()
	if err != nil {
		return err
	}
	poolState, err := m.loadPool(wrap.Pool)
	if err != nil {
		return err
	}
	if err := poolState.CheckExchangeRateCurrent(m.env.Sysvars.Clock().Epoch); err != nil {
		return err
	}
	if err := m.checkHolder(source, wrap.ShareMint, user); err != nil {
		return err
	}
	if _, err := m.checkTokenAccount(recipient, wrap.WrappedMint); err != nil {
		return err
	}

	value, err := poolState.ExchangeRate.ToNative(amount)
	if err != nil {
		return err
	}
	if err := m.env.Token.Transfer(source, m.ReserveAddress(), uint64(amount)); err != nil {
		return err
	}
	if err := m.env.Token.MintTo(wrap.WrappedMint, recipient, uint64(value)); err != nil {
		return err
	}
	logger.Debug("wrap deposit", "shares", amount, "minted", value)
	return m.save(wrap, instanceAccount)
}

// Withdraw burns the user's wrapped tokens and returns pool shares worth the
// same native value at the current exchange rate.
func (m *Manager) Withdraw(user, source, recipient meridian.Address, amount token.Native) error {
	if amount == 0 {
		return reverts.ErrInvalidAmount
	}
	wrap, instanceAccount, err := m.load()
	if err != nil {
		return err
	}
	poolState, err := m.loadPool(wrap.Pool)
	if err != nil {
		return err
	}
	if err := poolState.CheckExchangeRateCurrent(m.env.Sysvars.Clock().Epoch); err != nil {
		return err
	}
	if err := m.checkHolder(source, wrap.WrappedMint, user); err != nil {
		return err
	}
	if _, err := m.checkTokenAccount(recipient, wrap.ShareMint); err != nil {
		return err
	}

	shares, err := poolState.ExchangeRate.ToShares(amount)
	if err != nil {
		return err
	}
	if err := m.env.Token.Burn(wrap.WrappedMint, source, uint64(amount)); err != nil {
		return err
	}
	if err := m.env.Token.Transfer(m.ReserveAddress(), recipient, uint64(shares)); err != nil {
		return err
	}
	logger.Debug("wrap withdraw", "burned", amount, "shares", shares)
	return m.save(wrap, instanceAccount)
}

// FetchPoolPrice samples the swap pool's current price into the ring.
// Permissionless; the minimum sample distance keeps a single block producer
// from fabricating the whole window.
func (m *Manager) FetchPoolPrice() error {
	wrap, instanceAccount, err := m.load()
	if err != nil {
		return err
	}
	slot := m.env.Sysvars.Clock().Slot
	if latest, ok := wrap.Prices.Latest(); ok && slot < latest.Slot+MinSampleDistance {
		return errors.WithMessagef(ErrPriceSampleTooEarly,
			"sampled at slot %d, earliest allowed %d", latest.Slot, latest.Slot+MinSampleDistance)
	}
	price, err := m.swap.Price()
	if err != nil {
		return errors.WithMessage(err, "fetch price")
	}
	wrap.Prices.Push(PriceSample{ProceedsPerShare: price, Slot: slot})
	logger.Debug("price sampled", "price", price, "slot", slot)
	return m.save(wrap, instanceAccount)
}

// SellRewards sells the reserve's surplus over the wrapped supply through the
// swap pool. The surplus exists because the reserve's shares appreciate with
// the exchange rate while the wrapped supply stays pegged to the native value
// it was minted at. The accepted output is bounded below by the median of the
// sampled prices, so a sandwiching swap in the same block cannot move the
// bound.
func (m *Manager) SellRewards() error {
	wrap, instanceAccount, err := m.load()
	if err != nil {
		return err
	}
	poolState, err := m.loadPool(wrap.Pool)
	if err != nil {
		return err
	}
	clock := m.env.Sysvars.Clock()
	if err := poolState.CheckExchangeRateCurrent(clock.Epoch); err != nil {
		return err
	}
	median, err := wrap.Prices.Median(clock.Slot)
	if err != nil {
		return err
	}

	reserve, err := m.env.Token.Account(m.ReserveAddress())
	if err != nil {
		return errors.WithMessage(err, "load share reserve")
	}
	supply, err := m.env.Token.Supply(wrap.WrappedMint)
	if err != nil {
		return errors.WithMessage(err, "load wrapped supply")
	}
	backing, err := poolState.ExchangeRate.ToShares(token.Native(supply))
	if err != nil {
		return err
	}
	if token.Shares(reserve.Amount) <= backing {
		return ErrNoRewardsToSell
	}
	rewards := token.Shares(reserve.Amount) - backing

	minOut, err := wrap.minimumOut(rewards, median)
	if err != nil {
		return err
	}
	out, err := m.swap.Sell(m.ReserveAddress(), m.ProceedsAddress(), rewards, minOut)
	if err != nil {
		return errors.WithMessage(err, "sell rewards")
	}
	if out < minOut {
		return errors.WithMessagef(ErrSellWithLessThanMinimumOut,
			"received %d, minimum %d", out, minOut)
	}
	metricRewardsSold().Add(int64(uint64(rewards)))
	logger.Info("rewards sold", "shares", rewards, "proceeds", out, "medianPrice", median)
	return m.save(wrap, instanceAccount)
}

// SendRewards forwards the accumulated proceeds over the bridge to the
// destination on the other chain. A no-op when the proceeds account is empty.
func (m *Manager) SendRewards() error {
	wrap, _, err := m.load()
	if err != nil {
		return err
	}
	proceeds, err := m.env.Token.Account(m.ProceedsAddress())
	if err != nil {
		return errors.WithMessage(err, "load proceeds account")
	}
	if proceeds.Amount == 0 {
		return nil
	}
	if err := m.bridge.Forward(m.ProceedsAddress(), wrap.Destination, proceeds.Amount); err != nil {
		return errors.WithMessage(err, "forward proceeds")
	}
	metricProceedsForwarded().Add(int64(proceeds.Amount))
	logger.Info("proceeds forwarded", "amount", proceeds.Amount, "destination", wrap.Destination)
	return nil
}

// ChangeDestination points future forwarded proceeds at a new cross-chain
// address. Manager only.
func (m *Manager) ChangeDestination(signer meridian.Address, destination meridian.Bytes32) error {
	wrap, instanceAccount, err := m.load()
	if err != nil {
		return err
	}
	if signer != wrap.Manager {
		return reverts.ErrInvalidManager
	}
	wrap.Destination = destination
	return m.save(wrap, instanceAccount)
}

// ChangeMinOut adjusts the sell slippage bound. Manager only.
func (m *Manager) ChangeMinOut(signer meridian.Address, minOutBps uint64) error {
	wrap, instanceAccount, err := m.load()
	if err != nil {
		return err
	}
	if signer != wrap.Manager {
		return reverts.ErrInvalidManager
	}
	wrap.MinOutBps = minOutBps
	return m.save(wrap, instanceAccount)
}

func (m *Manager) load() (*State, *runtime.Account, error) {
	account, err := m.env.Store.Get(m.instance)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "load wrap instance")
	}
	if account.Owner != m.program {
		return nil, nil, reverts.ErrInvalidOwner
	}
	wrap, err := Deserialize(account.Data)
	if err != nil {
		return nil, nil, err
	}
	return wrap, account, nil
}

func (m *Manager) save(wrap *State, account *runtime.Account) error {
	account.Data = wrap.Serialize()
	return m.env.Store.Put(m.instance, account)
}

// loadPool reads the bound pool instance, verifying its owner.
func (m *Manager) loadPool(pool meridian.Address) (*state.Pool, error) {
	account, err := m.env.Store.Get(pool)
	if err != nil {
		return nil, errors.WithMessage(err, "load pool")
	}
	if account.Owner != m.poolProgram {
		return nil, reverts.ErrInvalidOwner
	}
	return state.Deserialize(account.Data)
}

func (m *Manager) checkTokenAccount(address, mint meridian.Address) (*runtime.TokenAccount, error) {
	account, err := m.env.Token.Account(address)
	if err != nil {
		return nil, err
	}
	if account.Mint != mint {
		return nil, reverts.ErrInvalidTokenMint
	}
	return account, nil
}

// checkHolder verifies a holder account's mint and owner before moving funds
// out of it.
func (m *Manager) checkHolder(address, mint, owner meridian.Address) error {
	account, err := m.checkTokenAccount(address, mint)
	if err != nil {
		return err
	}
	if account.Owner != owner {
		return reverts.ErrInvalidTokenOwner
	}
	return nil
}
