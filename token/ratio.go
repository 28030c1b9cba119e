// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/holiman/uint256"

	"github.com/meridian-pool/meridian/reverts"
)

// Ratio is an unsigned fraction. A zero denominator is rejected at use, not
// at construction, so zero-value ratios can sit in serialized state.
type Ratio struct {
	Numerator   uint64
	Denominator uint64
}

// IsZero returns true when the numerator is zero and the ratio has a valid
// denominator.
func (r Ratio) IsZero() bool {
	return r.Numerator == 0 && r.Denominator != 0
}

// mulDiv computes a * num / den rounding down. The product is taken over 256
// bits so it cannot overflow before the divide; only a result that does not
// fit back into 64 bits fails.
func mulDiv(a, num, den uint64) (uint64, error) {
	if den == 0 {
		return 0, reverts.ErrCalculation
	}
	product := new(uint256.Int).Mul(
		uint256.NewInt(a),
		uint256.NewInt(num),
	)
	quot := product.Div(product, uint256.NewInt(den))
	if !quot.IsUint64() {
		return 0, reverts.ErrCalculation
	}
	return quot.Uint64(), nil
}
