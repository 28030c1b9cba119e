// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/accounts"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/program"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/simulator"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

const (
	rentExempt = token.Native(1_000_000)
	coin       = token.Native(1_000_000_000)
)

func addr(name string) meridian.Address {
	return meridian.BytesToAddress([]byte(name))
}

type harness struct {
	t   *testing.T
	sim *simulator.Simulator
	p   *program.Processor

	programAddr meridian.Address
	instance    meridian.Address
	manager     meridian.Address
	maintainer  meridian.Address
	shareMint   meridian.Address
	treasury    meridian.Address
	developer   meridian.Address
	reserve     meridian.Address

	user      meridian.Address
	userToken meridian.Address

	feeAccounts map[meridian.Address]meridian.Address
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:           t,
		sim:         simulator.New(rentExempt),
		programAddr: addr("meridian-program"),
		instance:    addr("pool-instance"),
		manager:     addr("manager"),
		maintainer:  addr("maintainer"),
		shareMint:   addr("share-mint"),
		treasury:    addr("treasury-token"),
		developer:   addr("developer-token"),
		user:        addr("user"),
		userToken:   addr("user-token"),
		feeAccounts: make(map[meridian.Address]meridian.Address),
	}
	h.p = program.New(h.programAddr, h.instance, h.sim.Env())
	h.reserve = h.p.ReserveAddress()

	require.NoError(t, h.sim.CreateAccount(h.reserve, rentExempt))
	require.NoError(t, h.execute(&program.Initialize{
		RewardDistribution: state.RewardDistribution{
			TreasuryFee:       2,
			ValidationFee:     2,
			DeveloperFee:      1,
			ShareAppreciation: 5,
		},
		MaxValidators:  10,
		MaxMaintainers: 4,
	}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager},
		{Address: h.shareMint, Writable: true},
		{Address: h.treasury, Writable: true},
		{Address: h.developer, Writable: true},
		{Address: h.reserve},
	}))
	require.NoError(t, h.execute(&program.AddMaintainer{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: h.maintainer},
	}))
	require.NoError(t, h.sim.InitializeAccount(h.userToken, h.shareMint, h.user))
	return h
}

func (h *harness) execute(inst program.Instruction, infos []accounts.Info) error {
	return h.sim.Transactional(func() error {
		return h.p.Execute(inst, infos)
	})
}

func (h *harness) pool() *state.Pool {
	account, err := h.sim.Get(h.instance)
	require.NoError(h.t, err)
	pool, err := state.Deserialize(account.Data)
	require.NoError(h.t, err)
	return pool
}

func (h *harness) validator(voter meridian.Address) *state.Validator {
	validator, err := h.pool().Validators.Get(voter)
	require.NoError(h.t, err)
	return validator
}

func (h *harness) addValidator(voter meridian.Address) {
	fee := addr(fmt.Sprintf("fee-%x", voter.Bytes()[:4]))
	require.NoError(h.t, h.sim.CreateAccount(voter, rentExempt))
	require.NoError(h.t, h.sim.InitializeAccount(fee, h.shareMint, voter))
	h.feeAccounts[voter] = fee
	require.NoError(h.t, h.execute(&program.AddValidator{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: voter},
		{Address: fee},
	}))
}

func (h *harness) deposit(amount token.Native) error {
	require.NoError(h.t, h.sim.CreateAccount(h.user, amount))
	return h.execute(&program.Deposit{Amount: amount}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.user, Signer: true, Writable: true},
		{Address: h.userToken, Writable: true},
		{Address: h.shareMint, Writable: true},
		{Address: h.reserve, Writable: true},
	})
}

// stakeDeposit stakes to the validator, merging into the previous seed
// account when merge is set.
func (h *harness) stakeDeposit(voter meridian.Address, amount token.Native, merge bool) error {
	end := h.validator(voter).StakeSeeds.End
	stakeEnd := h.p.StakeAccountAddress(voter, end)
	mergeInto := stakeEnd
	if merge {
		mergeInto = h.p.StakeAccountAddress(voter, end-1)
	}
	return h.execute(&program.StakeDeposit{Amount: amount}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.maintainer, Signer: true},
		{Address: voter},
		{Address: h.reserve, Writable: true},
		{Address: stakeEnd, Writable: true},
		{Address: mergeInto, Writable: true},
	})
}

func (h *harness) unstake(voter meridian.Address, amount token.Native) error {
	validator := h.validator(voter)
	return h.execute(&program.Unstake{Amount: amount}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.maintainer, Signer: true},
		{Address: voter},
		{Address: h.p.StakeAccountAddress(voter, validator.StakeSeeds.Begin), Writable: true},
		{Address: h.p.UnstakeAccountAddress(voter, validator.UnstakeSeeds.End), Writable: true},
	})
}

func (h *harness) updateExchangeRate() error {
	return h.execute(&program.UpdateExchangeRate{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.reserve},
		{Address: h.shareMint},
	})
}

func (h *harness) withdrawInactiveStake(voter meridian.Address) error {
	return h.execute(&program.WithdrawInactiveStake{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: voter},
		{Address: h.reserve, Writable: true},
		{Address: h.shareMint, Writable: true},
		{Address: h.treasury, Writable: true},
		{Address: h.developer, Writable: true},
	})
}

func (h *harness) withdraw(voter meridian.Address, shares token.Shares, destination meridian.Address) error {
	validator := h.validator(voter)
	return h.execute(&program.Withdraw{Amount: shares}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.user, Signer: true},
		{Address: h.userToken, Writable: true},
		{Address: h.shareMint, Writable: true},
		{Address: voter},
		{Address: h.p.StakeAccountAddress(voter, validator.StakeSeeds.Begin), Writable: true},
		{Address: destination, Writable: true},
	})
}

func (h *harness) tokenBalance(account meridian.Address) uint64 {
	state, err := h.sim.Account(account)
	require.NoError(h.t, err)
	return state.Amount
}

func TestInitialize(t *testing.T) {
	h := newHarness(t)

	pool := h.pool()
	assert.Equal(t, h.manager, pool.Manager)
	assert.Equal(t, h.shareMint, pool.ShareMint)
	assert.Equal(t, h.treasury, pool.FeeRecipients.TreasuryAccount)
	assert.Equal(t, uint32(10), pool.Validators.MaximumEntries)
	assert.Equal(t, 1, pool.Maintainers.Len())

	err := h.execute(&program.Initialize{
		RewardDistribution: state.RewardDistribution{ShareAppreciation: 1},
		MaxValidators:      1,
		MaxMaintainers:     1,
	}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager},
		{Address: addr("other-mint"), Writable: true},
		{Address: h.treasury, Writable: true},
		{Address: h.developer, Writable: true},
		{Address: h.reserve},
	})
	assert.ErrorIs(t, err, reverts.ErrAlreadyInUse)
}

func TestDepositMintsShares(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.deposit(100*coin))
	assert.Equal(t, uint64(100*coin), h.tokenBalance(h.userToken))
	assert.Equal(t, rentExempt+100*coin, h.sim.Balance(h.reserve))
	assert.Equal(t, uint64(1), h.pool().Metrics.DepositAmount.NumObservations())

	err := h.deposit(0)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
}

// The first stake deposit extends the seed range to {0,1}; with only one
// active validator there is never a less-balanced alternative, so a second
// identical deposit must succeed too.
func TestStakeDepositSeedRange(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")

	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)

	require.NoError(t, h.stakeDeposit(voter, 10*coin, false))
	validator := h.validator(voter)
	assert.Equal(t, state.SeedRange{Begin: 0, End: 1}, validator.StakeSeeds)
	assert.Equal(t, 10*coin, validator.StakeAccountsBalance)

	require.NoError(t, h.stakeDeposit(voter, 10*coin, false))
	validator = h.validator(voter)
	assert.Equal(t, state.SeedRange{Begin: 0, End: 2}, validator.StakeSeeds)
	assert.Equal(t, 20*coin, validator.StakeAccountsBalance)

	// merging into the previous seed keeps the range from growing
	require.NoError(t, h.stakeDeposit(voter, 10*coin, true))
	validator = h.validator(voter)
	assert.Equal(t, state.SeedRange{Begin: 0, End: 2}, validator.StakeSeeds)
	assert.Equal(t, 30*coin, validator.StakeAccountsBalance)
}

func TestStakeDepositChecks(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)

	// below the minimum stake account balance
	assert.ErrorIs(t, h.stakeDeposit(voter, coin/2, false), reverts.ErrInvalidAmount)

	// more than the reserve can give up
	assert.ErrorIs(t, h.stakeDeposit(voter, 101*coin, false), reverts.ErrAmountExceedsReserve)

	// inactive validators accept no stake
	require.NoError(t, h.execute(&program.DeactivateValidator{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: voter},
	}))
	assert.ErrorIs(t, h.stakeDeposit(voter, 10*coin, false), reverts.ErrStakeToInactiveValidator)
}

func TestStakeDepositFairness(t *testing.T) {
	h := newHarness(t)
	v1, v2 := addr("voter-1"), addr("voter-2")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(v1)
	h.addValidator(v2)

	// ties go to the first entry, so the first deposit may overshoot
	require.NoError(t, h.stakeDeposit(v1, 60*coin, false))
	require.NoError(t, h.stakeDeposit(v2, 40*coin, false))

	// v2 is now the underfunded one; pushing v1 past target must fail
	require.NoError(t, h.deposit(20*coin))
	err := h.stakeDeposit(v1, 10*coin, false)
	assert.ErrorIs(t, err, reverts.ErrValidatorWithLessStakeExists)

	require.NoError(t, h.stakeDeposit(v2, 20*coin, false))
}

// Withdrawals must target the validator with the most *effective* stake:
// after unstaking 30 of v1's 60, v1 holds less effective stake than v2 even
// though its account balances are bigger.
func TestWithdrawEffectiveStakeFairness(t *testing.T) {
	h := newHarness(t)
	v1, v2 := addr("voter-1"), addr("voter-2")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(v1)
	h.addValidator(v2)
	require.NoError(t, h.stakeDeposit(v1, 60*coin, false))
	require.NoError(t, h.stakeDeposit(v2, 40*coin, false))

	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())
	require.NoError(t, h.unstake(v1, 30*coin))

	err := h.withdraw(v1, token.Shares(10*coin), addr("user-stake-1"))
	assert.ErrorIs(t, err, reverts.ErrValidatorWithMoreStakeExists)

	destination := addr("user-stake-2")
	require.NoError(t, h.withdraw(v2, token.Shares(10*coin), destination))
	assert.Equal(t, 10*coin, h.sim.Balance(destination))
	assert.Equal(t, uint64(90*coin), h.tokenBalance(h.userToken))
	assert.Equal(t, 30*coin, h.validator(v2).StakeAccountsBalance)

	// stake and withdraw authority belong to the user now
	authority, ok := h.sim.StakeAuthority(destination)
	require.True(t, ok)
	assert.Equal(t, h.user, authority)

	metrics := h.pool().Metrics
	assert.Equal(t, uint64(1), metrics.WithdrawAmount.Count)
	assert.Equal(t, 10*coin, metrics.WithdrawAmount.TotalNativeAmount)
}

func TestWithdrawCap(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 100*coin, false))

	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())

	// cap is 10% of the source account plus the fixed allowance
	err := h.withdraw(voter, token.Shares(25*coin), addr("user-stake"))
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
	require.NoError(t, h.withdraw(voter, token.Shares(15*coin), addr("user-stake")))
}

// Fourth unstake within one epoch trips the pending-account limit; after an
// epoch boundary and a balance refresh the seeds are recycled and unstaking
// works again.
func TestUnstakeAccountLimit(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 100*coin, false))

	for i := 0; i < 3; i++ {
		require.NoError(t, h.unstake(voter, 2*coin))
	}
	assert.ErrorIs(t, h.unstake(voter, 2*coin), reverts.ErrMaxUnstakeAccountsReached)

	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())
	require.NoError(t, h.withdrawInactiveStake(voter))

	validator := h.validator(voter)
	assert.Equal(t, state.SeedRange{Begin: 3, End: 3}, validator.UnstakeSeeds)
	assert.Equal(t, 94*coin, validator.StakeAccountsBalance)
	assert.Zero(t, validator.UnstakeAccountsBalance)
	assert.Equal(t, rentExempt+6*coin, h.sim.Balance(h.reserve))

	require.NoError(t, h.unstake(voter, 2*coin))
}

func TestUnstakeChecks(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 10*coin, false))

	// must keep the source above the minimum stake balance
	assert.ErrorIs(t, h.unstake(voter, 10*coin-rentExempt), reverts.ErrInvalidAmount)

	// must fund the destination past rent exemption
	assert.ErrorIs(t, h.unstake(voter, rentExempt), reverts.ErrInvalidAmount)
}

// Donating to a stake account must not move the exchange rate directly: the
// donation is observed by WithdrawInactiveStake, fees are carved out per the
// reward distribution, and only the remainder appreciates the pool.
func TestRewardObservationAndFees(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 100*coin, false))

	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())

	stakeAccount := h.p.StakeAccountAddress(voter, 0)
	require.NoError(t, h.sim.PayReward(stakeAccount, coin))
	require.NoError(t, h.withdrawInactiveStake(voter))

	// split of 1 coin at {2, 2, 1, 5}: 200m treasury, 200m validator,
	// 100m developer, 500m appreciation; rate is still 1:1
	assert.Equal(t, uint64(200_000_000), h.tokenBalance(h.treasury))
	assert.Equal(t, uint64(100_000_000), h.tokenBalance(h.developer))

	validator := h.validator(voter)
	assert.Equal(t, token.Shares(200_000_000), validator.FeeCredit)
	assert.Equal(t, 101*coin, validator.StakeAccountsBalance)

	metrics := h.pool().Metrics
	assert.Equal(t, token.Native(200_000_000), metrics.FeeTreasuryNativeTotal)
	assert.Equal(t, token.Native(200_000_000), metrics.FeeValidationNativeTotal)
	assert.Equal(t, token.Native(100_000_000), metrics.FeeDeveloperNativeTotal)
	assert.Equal(t, token.Native(500_000_000), metrics.AppreciationNativeTotal)

	// the validator's credit is minted on claim
	fee := h.feeAccounts[voter]
	require.NoError(t, h.execute(&program.ClaimValidatorFee{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: voter},
		{Address: h.shareMint, Writable: true},
		{Address: fee, Writable: true},
	}))
	assert.Equal(t, uint64(200_000_000), h.tokenBalance(fee))
	assert.Zero(t, h.validator(voter).FeeCredit)

	// next epoch's rate reflects the appreciation
	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())
	rate := h.pool().ExchangeRate
	assert.Equal(t, 101*coin, rate.NativeBalance)
	assert.Equal(t, token.Shares(100*coin+500_000_000), rate.ShareSupply)
}

func TestValidatorBalanceDecreased(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 100*coin, false))

	stakeAccount := h.p.StakeAccountAddress(voter, 0)
	account, err := h.sim.Get(stakeAccount)
	require.NoError(t, err)
	account.Balance -= coin
	require.NoError(t, h.sim.Put(stakeAccount, account))

	assert.ErrorIs(t, h.withdrawInactiveStake(voter), reverts.ErrValidatorBalanceDecreased)
}

func TestExchangeRateEpochGate(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.deposit(100*coin))

	// the rate for epoch zero is the initial one; updating again in the
	// same epoch is rejected
	assert.ErrorIs(t, h.updateExchangeRate(), reverts.ErrExchangeRateAlreadyUpdated)

	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())
	assert.ErrorIs(t, h.updateExchangeRate(), reverts.ErrExchangeRateAlreadyUpdated)

	rate := h.pool().ExchangeRate
	assert.Equal(t, uint64(1), rate.ComputedInEpoch)
	assert.Equal(t, 100*coin, rate.NativeBalance)
	assert.Equal(t, token.Shares(100*coin), rate.ShareSupply)

	// rate-dependent operations refuse a stale rate
	voter := addr("voter-1")
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 100*coin, false))
	h.sim.AdvanceEpoch()
	err := h.withdraw(voter, token.Shares(5*coin), addr("user-stake"))
	assert.ErrorIs(t, err, reverts.ErrExchangeRateNotUpdated)
}

func TestMergeStake(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(30*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 10*coin, false))

	err := h.mergeStake(voter)
	assert.ErrorIs(t, err, reverts.ErrInvalidStakeAccount)

	require.NoError(t, h.stakeDeposit(voter, 10*coin, false))
	require.NoError(t, h.mergeStake(voter))

	validator := h.validator(voter)
	assert.Equal(t, state.SeedRange{Begin: 1, End: 2}, validator.StakeSeeds)
	assert.Equal(t, 20*coin, validator.StakeAccountsBalance)
	assert.Equal(t, 20*coin, h.sim.Balance(h.p.StakeAccountAddress(voter, 1)))
}

func (h *harness) mergeStake(voter meridian.Address) error {
	validator := h.validator(voter)
	return h.execute(&program.MergeStake{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: voter},
		{Address: h.p.StakeAccountAddress(voter, validator.StakeSeeds.Begin), Writable: true},
		{Address: h.p.StakeAccountAddress(voter, validator.StakeSeeds.Begin+1), Writable: true},
	})
}

// Deactivate, drain and remove a validator end to end.
func TestValidatorLifecycle(t *testing.T) {
	h := newHarness(t)
	voter := addr("voter-1")
	require.NoError(t, h.deposit(50*coin))
	h.addValidator(voter)
	require.NoError(t, h.stakeDeposit(voter, 50*coin, false))

	require.NoError(t, h.execute(&program.DeactivateValidator{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: voter},
	}))

	// an inactive validator must be drained whole, not partially
	assert.ErrorIs(t, h.unstake(voter, 10*coin), reverts.ErrInvalidAmount)
	require.NoError(t, h.unstake(voter, 50*coin))

	validator := h.validator(voter)
	assert.Equal(t, state.SeedRange{Begin: 1, End: 1}, validator.StakeSeeds)

	// removal is blocked until the unstaked funds return to the reserve
	err := h.execute(&program.RemoveValidator{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: voter},
	})
	assert.ErrorIs(t, err, reverts.ErrValidatorShouldNotHaveAnyBalance)

	h.sim.AdvanceEpoch()
	require.NoError(t, h.withdrawInactiveStake(voter))
	assert.Equal(t, rentExempt+50*coin, h.sim.Balance(h.reserve))

	require.NoError(t, h.execute(&program.RemoveValidator{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: voter},
	}))
	assert.Zero(t, h.pool().Validators.Len())
}

func TestManagementAuthorization(t *testing.T) {
	h := newHarness(t)
	intruder := addr("intruder")

	err := h.execute(&program.AddMaintainer{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: intruder, Signer: true},
		{Address: addr("new-maintainer")},
	})
	assert.ErrorIs(t, err, reverts.ErrInvalidManager)

	err = h.execute(&program.StakeDeposit{Amount: 10 * coin}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: intruder, Signer: true},
		{Address: addr("voter-1")},
		{Address: h.reserve, Writable: true},
		{Address: addr("any"), Writable: true},
		{Address: addr("any"), Writable: true},
	})
	assert.ErrorIs(t, err, reverts.ErrInvalidMaintainer)

	require.NoError(t, h.execute(&program.RemoveMaintainer{}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: h.maintainer},
	}))
	assert.Zero(t, h.pool().Maintainers.Len())
}

func TestChangeRewardDistribution(t *testing.T) {
	h := newHarness(t)
	newTreasury := addr("new-treasury")
	require.NoError(t, h.sim.InitializeAccount(newTreasury, h.shareMint, h.manager))

	// recipients must hold the pool token
	badRecipient := addr("bad-recipient")
	otherMint := addr("other-mint")
	require.NoError(t, h.sim.InitializeMint(otherMint, h.manager))
	require.NoError(t, h.sim.InitializeAccount(badRecipient, otherMint, h.manager))

	err := h.execute(&program.ChangeRewardDistribution{
		New: state.RewardDistribution{ShareAppreciation: 1},
	}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: badRecipient},
		{Address: h.developer},
	})
	assert.ErrorIs(t, err, reverts.ErrInvalidTokenMint)

	require.NoError(t, h.execute(&program.ChangeRewardDistribution{
		New: state.RewardDistribution{TreasuryFee: 1, ShareAppreciation: 9},
	}, []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.manager, Signer: true},
		{Address: newTreasury},
		{Address: h.developer},
	}))
	pool := h.pool()
	assert.Equal(t, uint32(1), pool.RewardDistribution.TreasuryFee)
	assert.Equal(t, newTreasury, pool.FeeRecipients.TreasuryAccount)
}

func TestAccountTableBinding(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sim.CreateAccount(h.user, coin))

	base := []accounts.Info{
		{Address: h.instance, Writable: true},
		{Address: h.user, Signer: true, Writable: true},
		{Address: h.userToken, Writable: true},
		{Address: h.shareMint, Writable: true},
		{Address: h.reserve, Writable: true},
	}

	missing := base[:4]
	err := h.execute(&program.Deposit{Amount: coin}, missing)
	assert.ErrorIs(t, err, reverts.ErrInvalidAccountInfo)

	extra := append(append([]accounts.Info{}, base...), accounts.Info{Address: addr("extra")})
	err = h.execute(&program.Deposit{Amount: coin}, extra)
	assert.ErrorIs(t, err, reverts.ErrTooManyAccountKeys)

	unsigned := append([]accounts.Info{}, base...)
	unsigned[1].Signer = false
	err = h.execute(&program.Deposit{Amount: coin}, unsigned)
	assert.ErrorIs(t, err, reverts.ErrSignatureMissing)

	wrongPool := append([]accounts.Info{}, base...)
	wrongPool[0].Address = addr("not-the-pool")
	err = h.execute(&program.Deposit{Amount: coin}, wrongPool)
	assert.ErrorIs(t, err, reverts.ErrInvalidAccountInfo)

	wrongReserve := append([]accounts.Info{}, base...)
	wrongReserve[4].Address = addr("not-the-reserve")
	err = h.execute(&program.Deposit{Amount: coin}, wrongReserve)
	assert.ErrorIs(t, err, reverts.ErrInvalidDerivedAccount)
}

// Conservation: reserve plus all validator balances equals deposits minus
// payouts plus the rewards the metrics account for.
func TestConservation(t *testing.T) {
	h := newHarness(t)
	v1, v2 := addr("voter-1"), addr("voter-2")
	require.NoError(t, h.deposit(100*coin))
	h.addValidator(v1)
	h.addValidator(v2)
	require.NoError(t, h.stakeDeposit(v1, 50*coin, false))
	require.NoError(t, h.stakeDeposit(v2, 50*coin, false))

	h.sim.AdvanceEpoch()
	require.NoError(t, h.updateExchangeRate())

	reward := 2 * coin
	require.NoError(t, h.sim.PayReward(h.p.StakeAccountAddress(v1, 0), reward))
	require.NoError(t, h.withdrawInactiveStake(v1))
	require.NoError(t, h.unstake(v2, 10*coin))

	destination := addr("user-stake")
	payout := 5 * coin
	require.NoError(t, h.withdraw(v1, token.Shares(payout), destination))

	pool := h.pool()
	total := h.sim.Balance(h.reserve) - rentExempt
	for i := range pool.Validators.Entries {
		total += pool.Validators.Entries[i].Entry.StakeAccountsBalance
	}
	deposits := 100 * coin
	metrics := pool.Metrics
	rewards := metrics.FeeTreasuryNativeTotal + metrics.FeeValidationNativeTotal +
		metrics.FeeDeveloperNativeTotal + metrics.AppreciationNativeTotal
	assert.Equal(t, reward, rewards)
	assert.Equal(t, deposits-payout+rewards, total)
}
