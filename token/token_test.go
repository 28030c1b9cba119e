// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/reverts"
)

func TestNative_AddSub(t *testing.T) {
	sum, err := Native(1).Add(Native(2))
	require.NoError(t, err)
	assert.Equal(t, Native(3), sum)

	_, err = Native(math.MaxUint64).Add(Native(1))
	assert.ErrorIs(t, err, reverts.ErrCalculation)

	diff, err := Native(5).Sub(Native(5))
	require.NoError(t, err)
	assert.Equal(t, Native(0), diff)

	_, err = Native(4).Sub(Native(5))
	assert.ErrorIs(t, err, reverts.ErrCalculation)
}

func TestShares_AddSub(t *testing.T) {
	sum, err := Shares(math.MaxUint64 - 1).Add(Shares(1))
	require.NoError(t, err)
	assert.Equal(t, Shares(math.MaxUint64), sum)

	_, err = sum.Add(Shares(1))
	assert.ErrorIs(t, err, reverts.ErrCalculation)
}

func TestMulRatio_RoundsDown(t *testing.T) {
	got, err := Native(10).MulRatio(Ratio{Numerator: 1, Denominator: 3})
	require.NoError(t, err)
	assert.Equal(t, Native(3), got)

	got, err = Native(0).MulRatio(Ratio{Numerator: 1, Denominator: 3})
	require.NoError(t, err)
	assert.Equal(t, Native(0), got)
}

func TestMulRatio_NoIntermediateOverflow(t *testing.T) {
	// (maxUint64 * 3) overflows 64 bits but the result fits.
	got, err := Native(math.MaxUint64).MulRatio(Ratio{Numerator: 3, Denominator: 6})
	require.NoError(t, err)
	assert.Equal(t, Native(math.MaxUint64/2), got)
}

func TestMulRatio_Failures(t *testing.T) {
	_, err := Native(1).MulRatio(Ratio{Numerator: 1, Denominator: 0})
	assert.ErrorIs(t, err, reverts.ErrCalculation)

	// result exceeds 64 bits
	_, err = Shares(math.MaxUint64).MulRatio(Ratio{Numerator: 2, Denominator: 1})
	assert.ErrorIs(t, err, reverts.ErrCalculation)
}

func TestSum(t *testing.T) {
	total, err := SumNative(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, Native(6), total)

	_, err = SumShares(math.MaxUint64, 1)
	assert.ErrorIs(t, err, reverts.ErrCalculation)
}

func TestString(t *testing.T) {
	assert.Equal(t, "1.500000000 NAT", Native(1_500_000_000).String())
	assert.Equal(t, "0.000000001 POOL", Shares(1).String())
}
