// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meridian

// Constants of the staking pool protocol.
const (
	// NativePerCoin number of base native units per whole coin.
	NativePerCoin uint64 = 1_000_000_000

	// MinimumStakeAccountBalance smallest balance a validator stake account may
	// hold or be created with. Splitting below it is rejected.
	MinimumStakeAccountBalance uint64 = NativePerCoin

	// MaxUnstakeAccounts number of unstake accounts a validator may have pending
	// at once. A further unstake must wait for inactive stake withdrawal.
	MaxUnstakeAccounts uint64 = 3

	// MaxWithdrawBps portion of a stake account, in basis points, that a single
	// withdrawal may take.
	MaxWithdrawBps uint64 = 1_000

	// WithdrawFixedAllowance extra native units a single withdrawal may take on
	// top of the MaxWithdrawBps portion, so small pools stay usable.
	WithdrawFixedAllowance uint64 = 10 * NativePerCoin
)
