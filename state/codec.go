// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

// The instance account has a fixed-size little-endian layout. The size is a
// function of the registry capacities, decided at Initialize, and never
// changes afterwards; unused registry slots stay zeroed. Variable-length
// encodings would make the account size depend on the entry count, which the
// runtime does not allow.

const (
	exchangeRateSize       = 8 + 8 + 8
	rewardDistributionSize = 4 * 4
	feeRecipientsSize      = 2 * meridian.AddressLength
	histogramSize          = NumHistogramBuckets*8 + 8
	withdrawMetricSize     = 8 + 8 + 8
	metricsSize            = 7*8 + histogramSize + withdrawMetricSize
	validatorSize          = 8 + meridian.AddressLength + 4*8 + 2*8 + 1

	mapHeaderSize       = 4 + 4
	maintainerEntrySize = meridian.AddressLength
	validatorEntrySize  = meridian.AddressLength + validatorSize
	poolHeaderSize      = 1 + 2*meridian.AddressLength + exchangeRateSize + rewardDistributionSize + feeRecipientsSize + metricsSize
)

// RequiredBytes returns the exact account size for the given capacities.
func RequiredBytes(maxValidators, maxMaintainers uint32) int {
	return poolHeaderSize +
		mapHeaderSize + int(maxMaintainers)*maintainerEntrySize +
		mapHeaderSize + int(maxValidators)*validatorEntrySize
}

// RequiredBytes returns the serialized size of this instance.
func (p *Pool) RequiredBytes() int {
	return RequiredBytes(p.Validators.MaximumEntries, p.Maintainers.MaximumEntries)
}

type codecBuf struct {
	buf []byte
	off int
	err error
}

func (c *codecBuf) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if c.off+n > len(c.buf) {
		c.err = reverts.ErrInvalidPoolSize
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *codecBuf) putU8(v uint8) {
	if b := c.take(1); b != nil {
		b[0] = v
	}
}

func (c *codecBuf) putU32(v uint32) {
	if b := c.take(4); b != nil {
		binary.LittleEndian.PutUint32(b, v)
	}
}

func (c *codecBuf) putU64(v uint64) {
	if b := c.take(8); b != nil {
		binary.LittleEndian.PutUint64(b, v)
	}
}

func (c *codecBuf) putAddress(a meridian.Address) {
	if b := c.take(meridian.AddressLength); b != nil {
		copy(b, a[:])
	}
}

func (c *codecBuf) putBool(v bool) {
	if v {
		c.putU8(1)
	} else {
		c.putU8(0)
	}
}

func (c *codecBuf) u8() uint8 {
	if b := c.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (c *codecBuf) u32() uint32 {
	if b := c.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (c *codecBuf) u64() uint64 {
	if b := c.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (c *codecBuf) address() meridian.Address {
	var a meridian.Address
	if b := c.take(meridian.AddressLength); b != nil {
		copy(a[:], b)
	}
	return a
}

func (c *codecBuf) bool() bool {
	return c.u8() != 0
}

// Serialize encodes the instance into a buffer of exactly RequiredBytes.
func (p *Pool) Serialize() ([]byte, error) {
	c := &codecBuf{buf: make([]byte, p.RequiredBytes())}

	c.putU8(p.Version)
	c.putAddress(p.Manager)
	c.putAddress(p.ShareMint)

	c.putU64(p.ExchangeRate.ComputedInEpoch)
	c.putU64(uint64(p.ExchangeRate.ShareSupply))
	c.putU64(uint64(p.ExchangeRate.NativeBalance))

	c.putU32(p.RewardDistribution.TreasuryFee)
	c.putU32(p.RewardDistribution.ValidationFee)
	c.putU32(p.RewardDistribution.DeveloperFee)
	c.putU32(p.RewardDistribution.ShareAppreciation)

	c.putAddress(p.FeeRecipients.TreasuryAccount)
	c.putAddress(p.FeeRecipients.DeveloperAccount)

	p.Metrics.serialize(c)

	c.putU32(p.Maintainers.MaximumEntries)
	c.putU32(uint32(len(p.Maintainers.Entries)))
	for i := range p.Maintainers.Entries {
		c.putAddress(p.Maintainers.Entries[i].Address)
	}
	c.take(int(p.Maintainers.MaximumEntries-uint32(len(p.Maintainers.Entries))) * maintainerEntrySize)

	c.putU32(p.Validators.MaximumEntries)
	c.putU32(uint32(len(p.Validators.Entries)))
	for i := range p.Validators.Entries {
		e := &p.Validators.Entries[i]
		c.putAddress(e.Address)
		c.putU64(uint64(e.Entry.FeeCredit))
		c.putAddress(e.Entry.FeeAddress)
		c.putU64(e.Entry.StakeSeeds.Begin)
		c.putU64(e.Entry.StakeSeeds.End)
		c.putU64(e.Entry.UnstakeSeeds.Begin)
		c.putU64(e.Entry.UnstakeSeeds.End)
		c.putU64(uint64(e.Entry.StakeAccountsBalance))
		c.putU64(uint64(e.Entry.UnstakeAccountsBalance))
		c.putBool(e.Entry.Active)
	}
	c.take(int(p.Validators.MaximumEntries-uint32(len(p.Validators.Entries))) * validatorEntrySize)

	if c.err != nil {
		return nil, c.err
	}
	if c.off != len(c.buf) {
		return nil, reverts.ErrInvalidPoolSize
	}
	return c.buf, nil
}

// Deserialize decodes an instance account. The buffer length must match the
// capacities recorded inside it exactly.
func Deserialize(data []byte) (*Pool, error) {
	c := &codecBuf{buf: data}
	p := &Pool{}

	p.Version = c.u8()
	p.Manager = c.address()
	p.ShareMint = c.address()

	p.ExchangeRate.ComputedInEpoch = c.u64()
	p.ExchangeRate.ShareSupply = token.Shares(c.u64())
	p.ExchangeRate.NativeBalance = token.Native(c.u64())

	p.RewardDistribution.TreasuryFee = c.u32()
	p.RewardDistribution.ValidationFee = c.u32()
	p.RewardDistribution.DeveloperFee = c.u32()
	p.RewardDistribution.ShareAppreciation = c.u32()

	p.FeeRecipients.TreasuryAccount = c.address()
	p.FeeRecipients.DeveloperAccount = c.address()

	p.Metrics.deserialize(c)

	maxMaintainers := c.u32()
	numMaintainers := c.u32()
	if numMaintainers > maxMaintainers {
		return nil, reverts.ErrInvalidPoolSize
	}
	p.Maintainers = NewAccountSet(maxMaintainers)
	for range numMaintainers {
		p.Maintainers.Entries = append(p.Maintainers.Entries, AccountMapEntry[struct{}]{Address: c.address()})
	}
	c.take(int(maxMaintainers-numMaintainers) * maintainerEntrySize)

	maxValidators := c.u32()
	numValidators := c.u32()
	if numValidators > maxValidators {
		return nil, reverts.ErrInvalidPoolSize
	}
	p.Validators = NewAccountMap[Validator](maxValidators)
	for range numValidators {
		var e AccountMapEntry[Validator]
		e.Address = c.address()
		e.Entry.FeeCredit = token.Shares(c.u64())
		e.Entry.FeeAddress = c.address()
		e.Entry.StakeSeeds.Begin = c.u64()
		e.Entry.StakeSeeds.End = c.u64()
		e.Entry.UnstakeSeeds.Begin = c.u64()
		e.Entry.UnstakeSeeds.End = c.u64()
		e.Entry.StakeAccountsBalance = token.Native(c.u64())
		e.Entry.UnstakeAccountsBalance = token.Native(c.u64())
		e.Entry.Active = c.bool()
		p.Validators.Entries = append(p.Validators.Entries, e)
	}
	c.take(int(maxValidators-numValidators) * validatorEntrySize)

	if c.err != nil {
		return nil, c.err
	}
	if c.off != len(data) {
		return nil, reverts.ErrInvalidPoolSize
	}
	return p, nil
}

func (m *Metrics) serialize(c *codecBuf) {
	c.putU64(uint64(m.FeeTreasuryNativeTotal))
	c.putU64(uint64(m.FeeValidationNativeTotal))
	c.putU64(uint64(m.FeeDeveloperNativeTotal))
	c.putU64(uint64(m.AppreciationNativeTotal))
	c.putU64(uint64(m.FeeTreasurySharesTotal))
	c.putU64(uint64(m.FeeValidationSharesTotal))
	c.putU64(uint64(m.FeeDeveloperSharesTotal))
	for _, count := range m.DepositAmount.Counts {
		c.putU64(count)
	}
	c.putU64(uint64(m.DepositAmount.Total))
	c.putU64(uint64(m.WithdrawAmount.TotalSharesAmount))
	c.putU64(uint64(m.WithdrawAmount.TotalNativeAmount))
	c.putU64(m.WithdrawAmount.Count)
}

func (m *Metrics) deserialize(c *codecBuf) {
	m.FeeTreasuryNativeTotal = token.Native(c.u64())
	m.FeeValidationNativeTotal = token.Native(c.u64())
	m.FeeDeveloperNativeTotal = token.Native(c.u64())
	m.AppreciationNativeTotal = token.Native(c.u64())
	m.FeeTreasurySharesTotal = token.Shares(c.u64())
	m.FeeValidationSharesTotal = token.Shares(c.u64())
	m.FeeDeveloperSharesTotal = token.Shares(c.u64())
	for i := range m.DepositAmount.Counts {
		m.DepositAmount.Counts[i] = c.u64()
	}
	m.DepositAmount.Total = token.Native(c.u64())
	m.WithdrawAmount.TotalSharesAmount = token.Shares(c.u64())
	m.WithdrawAmount.TotalNativeAmount = token.Native(c.u64())
	m.WithdrawAmount.Count = c.u64()
}
