// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the coded errors an instruction can abort with.
// Every error here is fatal to the instruction that raised it; no state is
// written. External primitive errors are wrapped, never mapped onto codes.
package reverts

import (
	"errors"
	"fmt"
)

// ErrRevert is an instruction abort with a stable numeric code.
type ErrRevert struct {
	code    uint32
	message string
}

// New creates a coded revert error. Codes are part of the public surface and
// must never be reused.
func New(code uint32, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return fmt.Sprintf("%s (code %d)", e.message, e.code)
}

// Code returns the stable numeric code.
func (e *ErrRevert) Code() uint32 {
	return e.code
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrAlreadyInUse                     = New(0, "account already in use")
	ErrInvalidOwner                     = New(1, "invalid account owner")
	ErrInvalidAmount                    = New(2, "invalid amount")
	ErrSignatureMissing                 = New(3, "required signature missing")
	ErrInvalidReserveAccount            = New(4, "invalid reserve account")
	ErrCalculation                      = New(5, "calculation failure")
	ErrWrongStakeState                  = New(6, "stake account in wrong state")
	ErrInvalidFeeAmount                 = New(7, "invalid fee distribution")
	ErrMaximumNumberOfAccountsExceeded  = New(8, "maximum number of accounts exceeded")
	ErrInvalidManager                   = New(10, "signer is not the manager")
	ErrInvalidMaintainer                = New(11, "signer is not a maintainer")
	ErrInvalidAccountInfo               = New(12, "account flags or address mismatch")
	ErrTooManyAccountKeys               = New(13, "more accounts provided than expected")
	ErrDuplicatedEntry                  = New(19, "entry already present")
	ErrValidatorHasUnclaimedCredit      = New(21, "validator has unclaimed fee credit")
	ErrReserveNotRentExempt             = New(22, "reserve would drop below rent exemption")
	ErrAmountExceedsReserve             = New(23, "amount exceeds the available reserve")
	ErrInvalidAccountMember             = New(25, "entry not present")
	ErrInvalidPoolSize                  = New(26, "pool account size mismatch")
	ErrNoActiveValidators               = New(27, "instance has no active validators")
	ErrInvalidStakeAccount              = New(28, "not the right stake account to use now")
	ErrInvalidTokenAccount              = New(29, "invalid pool token account")
	ErrExchangeRateAlreadyUpdated       = New(30, "exchange rate already updated this epoch")
	ErrExchangeRateNotUpdated           = New(31, "exchange rate not yet updated this epoch")
	ErrValidatorBalanceDecreased        = New(32, "validator stake balance decreased")
	ErrInvalidStakeAuthority            = New(33, "invalid stake authority")
	ErrInvalidVoteAccount               = New(35, "invalid vote account")
	ErrInvalidTokenOwner                = New(36, "invalid token account owner")
	ErrValidatorWithMoreStakeExists     = New(37, "another validator holds more stake")
	ErrInvalidTokenMint                 = New(38, "invalid token mint")
	ErrStakeToInactiveValidator         = New(39, "validator is not accepting stake")
	ErrValidatorShouldNotHaveAnyBalance = New(41, "validator still has stake or unstake balance")
	ErrValidatorWithLessStakeExists     = New(42, "another validator is further below target")
	ErrMaxUnstakeAccountsReached        = New(44, "validator reached the unstake account limit")
	ErrInvalidDerivedAccount            = New(45, "derived account address mismatch")
	ErrAccountListIndexOutOfBounds      = New(46, "account list index out of bounds")
)
