// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math"

	"github.com/meridian-pool/meridian/token"
)

// Metrics are counters embedded in the instance state. Reconstructing these
// from transaction history is possible in theory and painful in practice, so
// the program counts as it goes. Counters only ever increase.
type Metrics struct {
	// Fee totals in native units, valued at the time the fee was paid.
	FeeTreasuryNativeTotal   token.Native
	FeeValidationNativeTotal token.Native
	FeeDeveloperNativeTotal  token.Native

	// Rewards that benefited pool token holders through appreciation.
	AppreciationNativeTotal token.Native

	// Fee totals in pool tokens, as minted.
	FeeTreasurySharesTotal   token.Shares
	FeeValidationSharesTotal token.Shares
	FeeDeveloperSharesTotal  token.Shares

	DepositAmount  NativeHistogram
	WithdrawAmount WithdrawMetric
}

// ObserveFees records one reward split and the pool tokens minted for it.
func (m *Metrics) ObserveFees(fees Fees, numValidators uint64, treasuryShares, validationShares, developerShares token.Shares) error {
	var err error
	if m.FeeTreasuryNativeTotal, err = m.FeeTreasuryNativeTotal.Add(fees.TreasuryAmount); err != nil {
		return err
	}
	validationNative := fees.RewardPerValidator * token.Native(numValidators)
	if m.FeeValidationNativeTotal, err = m.FeeValidationNativeTotal.Add(validationNative); err != nil {
		return err
	}
	if m.FeeDeveloperNativeTotal, err = m.FeeDeveloperNativeTotal.Add(fees.DeveloperAmount); err != nil {
		return err
	}
	if m.AppreciationNativeTotal, err = m.AppreciationNativeTotal.Add(fees.AppreciationAmount); err != nil {
		return err
	}
	if m.FeeTreasurySharesTotal, err = m.FeeTreasurySharesTotal.Add(treasuryShares); err != nil {
		return err
	}
	if m.FeeValidationSharesTotal, err = m.FeeValidationSharesTotal.Add(validationShares); err != nil {
		return err
	}
	if m.FeeDeveloperSharesTotal, err = m.FeeDeveloperSharesTotal.Add(developerShares); err != nil {
		return err
	}
	return nil
}

// ObserveDeposit records a deposit.
func (m *Metrics) ObserveDeposit(amount token.Native) error {
	return m.DepositAmount.Observe(amount)
}

// ObserveWithdraw records a withdrawal.
func (m *Metrics) ObserveWithdraw(shares token.Shares, native token.Native) error {
	return m.WithdrawAmount.Observe(shares, native)
}

// NumHistogramBuckets buckets grow by a factor 10 each. The smallest is worth
// less than the transaction fee, the largest is open-ended.
const NumHistogramBuckets = 12

// HistogramBucketUpperBounds upper bounds, inclusive, of each bucket.
var HistogramBucketUpperBounds = [NumHistogramBuckets]token.Native{
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
	100_000_000_000,
	1_000_000_000_000,
	10_000_000_000_000,
	100_000_000_000_000,
	1_000_000_000_000_000,
	math.MaxUint64,
}

// NativeHistogram counts native amounts in cumulative buckets: Counts[i] is
// the number of observations not larger than HistogramBucketUpperBounds[i].
type NativeHistogram struct {
	Counts [NumHistogramBuckets]uint64
	Total  token.Native
}

// Observe records a new observation.
func (h *NativeHistogram) Observe(amount token.Native) error {
	for i, upperBound := range HistogramBucketUpperBounds {
		if amount <= upperBound {
			h.Counts[i]++
		}
	}
	var err error
	h.Total, err = h.Total.Add(amount)
	return err
}

// NumObservations every observation falls in the last bucket.
func (h *NativeHistogram) NumObservations() uint64 {
	return h.Counts[NumHistogramBuckets-1]
}

// WithdrawMetric tracks how many times Withdraw ran and the totals moved.
type WithdrawMetric struct {
	TotalSharesAmount token.Shares
	TotalNativeAmount token.Native
	Count             uint64
}

// Observe records a withdrawal.
func (w *WithdrawMetric) Observe(shares token.Shares, native token.Native) error {
	var err error
	if w.TotalSharesAmount, err = w.TotalSharesAmount.Add(shares); err != nil {
		return err
	}
	if w.TotalNativeAmount, err = w.TotalNativeAmount.Add(native); err != nil {
		return err
	}
	w.Count++
	return nil
}
