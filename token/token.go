// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token defines the two amount units the pool deals in. Native is the
// chain's stake-bearing unit, Shares is the pool token. The types do not mix;
// conversion happens only through the instance exchange rate.
package token

import (
	"fmt"
	"math/bits"

	"github.com/meridian-pool/meridian/reverts"
)

// Native amount in base native units.
type Native uint64

// Shares amount in pool token units.
type Shares uint64

type amount interface {
	~uint64
}

func checkedAdd[T amount](a, b T) (T, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, reverts.ErrCalculation
	}
	return T(sum), nil
}

func checkedSub[T amount](a, b T) (T, error) {
	if b > a {
		return 0, reverts.ErrCalculation
	}
	return a - b, nil
}

func (n Native) Add(other Native) (Native, error) { return checkedAdd(n, other) }
func (n Native) Sub(other Native) (Native, error) { return checkedSub(n, other) }

func (s Shares) Add(other Shares) (Shares, error) { return checkedAdd(s, other) }
func (s Shares) Sub(other Shares) (Shares, error) { return checkedSub(s, other) }

// MulRatio multiplies by a ratio, rounding down.
func (n Native) MulRatio(r Ratio) (Native, error) {
	v, err := mulDiv(uint64(n), r.Numerator, r.Denominator)
	return Native(v), err
}

// MulRatio multiplies by a ratio, rounding down.
func (s Shares) MulRatio(r Ratio) (Shares, error) {
	v, err := mulDiv(uint64(s), r.Numerator, r.Denominator)
	return Shares(v), err
}

// SumNative adds up amounts, failing on overflow.
func SumNative(amounts ...Native) (Native, error) {
	var total Native
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// SumShares adds up amounts, failing on overflow.
func SumShares(amounts ...Shares) (Shares, error) {
	var total Shares
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (n Native) String() string {
	return fmt.Sprintf("%d.%09d NAT", uint64(n)/1e9, uint64(n)%1e9)
}

func (s Shares) String() string {
	return fmt.Sprintf("%d.%09d POOL", uint64(s)/1e9, uint64(s)%1e9)
}
