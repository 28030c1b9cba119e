// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

const rentExempt = token.Native(1_000_000)

func addr(name string) meridian.Address {
	return meridian.BytesToAddress([]byte(name))
}

func TestStakeLifecycle(t *testing.T) {
	sim := New(rentExempt)
	account := addr("stake-1")
	voter := addr("voter-1")
	authority := addr("authority")

	require.NoError(t, sim.CreateAccount(account, 10*rentExempt))
	require.NoError(t, sim.Delegate(account, voter, authority))

	observed, err := sim.Observe(account)
	require.NoError(t, err)
	assert.True(t, observed.IsActivating())
	assert.Equal(t, rentExempt, observed.Balance.Inactive)

	sim.AdvanceEpoch()
	observed, err = sim.Observe(account)
	require.NoError(t, err)
	assert.True(t, observed.IsActive())
	assert.Equal(t, 9*rentExempt, observed.Balance.Active)

	require.NoError(t, sim.Deactivate(account))
	observed, err = sim.Observe(account)
	require.NoError(t, err)
	assert.Equal(t, 9*rentExempt, observed.Balance.Deactivating)

	sim.AdvanceEpoch()
	observed, err = sim.Observe(account)
	require.NoError(t, err)
	assert.True(t, observed.IsInactive())

	destination := addr("out")
	require.NoError(t, sim.Withdraw(account, destination, 10*rentExempt))
	assert.Equal(t, 10*rentExempt, sim.Balance(destination))

	// fully drained stake accounts close
	_, err = sim.Observe(account)
	assert.Error(t, err)
}

func TestStakeSplitAndMerge(t *testing.T) {
	sim := New(rentExempt)
	a, b := addr("stake-a"), addr("stake-b")
	voter := addr("voter-1")

	require.NoError(t, sim.CreateAccount(a, 20*rentExempt))
	require.NoError(t, sim.Delegate(a, voter, addr("authority")))
	require.NoError(t, sim.Split(a, b, 5*rentExempt))
	assert.Equal(t, 15*rentExempt, sim.Balance(a))
	assert.Equal(t, 5*rentExempt, sim.Balance(b))

	// both activating in the same epoch, so they merge
	require.NoError(t, sim.Merge(b, a))
	assert.Equal(t, 20*rentExempt, sim.Balance(a))
	_, err := sim.Observe(b)
	assert.Error(t, err)
}

func TestStakeWithdrawOnlyInactive(t *testing.T) {
	sim := New(rentExempt)
	account := addr("stake-1")
	require.NoError(t, sim.CreateAccount(account, 10*rentExempt))
	require.NoError(t, sim.Delegate(account, addr("voter-1"), addr("authority")))
	sim.AdvanceEpoch()

	err := sim.Withdraw(account, addr("out"), 5*rentExempt)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
}

func TestTokenPrimitive(t *testing.T) {
	sim := New(rentExempt)
	mint := addr("mint")
	alice, bob := addr("alice-token"), addr("bob-token")

	require.NoError(t, sim.InitializeMint(mint, addr("authority")))
	assert.ErrorIs(t, sim.InitializeMint(mint, addr("authority")), reverts.ErrAlreadyInUse)

	require.NoError(t, sim.InitializeAccount(alice, mint, addr("alice")))
	require.NoError(t, sim.InitializeAccount(bob, mint, addr("bob")))

	require.NoError(t, sim.MintTo(mint, alice, 1000))
	require.NoError(t, sim.Transfer(alice, bob, 400))
	require.NoError(t, sim.Burn(mint, bob, 100))

	supply, err := sim.Supply(mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), supply)

	account, err := sim.Account(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), account.Amount)

	assert.ErrorIs(t, sim.Burn(mint, bob, 10_000), reverts.ErrInvalidAmount)
}

func TestTransactionalRollback(t *testing.T) {
	sim := New(rentExempt)
	mint := addr("mint")
	holder := addr("holder-token")
	account := addr("account")

	require.NoError(t, sim.InitializeMint(mint, addr("authority")))
	require.NoError(t, sim.InitializeAccount(holder, mint, addr("holder")))
	require.NoError(t, sim.CreateAccount(account, 100))

	err := sim.Transactional(func() error {
		require.NoError(t, sim.MintTo(mint, holder, 42))
		require.NoError(t, sim.CreateAccount(addr("fresh"), 7))
		require.NoError(t, sim.CreateAccount(account, 100))
		return reverts.ErrInvalidAmount
	})
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	supply, err := sim.Supply(mint)
	require.NoError(t, err)
	assert.Zero(t, supply)
	assert.Equal(t, token.Native(100), sim.Balance(account))
	assert.Zero(t, sim.Balance(addr("fresh")))
}
