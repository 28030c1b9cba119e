// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

func TestInstructionRoundTrip(t *testing.T) {
	instructions := []Instruction{
		&Initialize{
			RewardDistribution: state.RewardDistribution{
				TreasuryFee:       3,
				ValidationFee:     2,
				DeveloperFee:      1,
				ShareAppreciation: 94,
			},
			MaxValidators:  100,
			MaxMaintainers: 5,
		},
		&Deposit{Amount: token.Native(1_234_567)},
		&Withdraw{Amount: token.Shares(42)},
		&StakeDeposit{Amount: token.Native(10_000_000_000)},
		&Unstake{Amount: token.Native(1)},
		&UpdateExchangeRate{},
		&WithdrawInactiveStake{},
		&ChangeRewardDistribution{New: state.RewardDistribution{ShareAppreciation: 1}},
		&AddValidator{},
		&DeactivateValidator{},
		&RemoveValidator{},
		&AddMaintainer{},
		&RemoveMaintainer{},
		&MergeStake{},
		&ClaimValidatorFee{},
	}
	for _, inst := range instructions {
		t.Run(inst.Name(), func(t *testing.T) {
			decoded, err := DecodeInstruction(EncodeInstruction(inst))
			require.NoError(t, err)
			assert.Equal(t, inst, decoded)
		})
	}
}

func TestDecodeInstructionRejects(t *testing.T) {
	_, err := DecodeInstruction(nil)
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	_, err = DecodeInstruction([]byte{0xff})
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	// short payload
	_, err = DecodeInstruction([]byte{tagDeposit, 1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	// trailing bytes on a no-arg instruction
	_, err = DecodeInstruction([]byte{tagMergeStake, 0})
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}
