// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xchain implements the wrapped-token module: an instance bound to
// one pool that wraps the pool-share token into a second token pegged to the
// native unit, and periodically sells the staking rewards accruing on its
// reserve through an external swap pool, forwarding the proceeds over a
// bridge to an address on another chain.
package xchain

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/token"
)

// Protocol constants of the price oracle ring.
const (
	// NumPriceSamples samples needed before rewards may be sold.
	NumPriceSamples = 5

	// MinSampleDistance slots that must pass between two samples, so one
	// block producer cannot fabricate the whole window.
	MinSampleDistance uint64 = 100

	// MaxSampleAge slots a sample stays usable. Older samples no longer
	// reflect the market the sell executes against.
	MaxSampleAge uint64 = 1000
)

// Errors of the wrapped-token module. Codes 100 and up are reserved for
// this module so they never collide with the pool program's.
var (
	ErrPriceSampleTooEarly        = reverts.New(100, "price sampled too soon after the previous sample")
	ErrPriceSampleStale           = reverts.New(101, "price sample is too old to use")
	ErrNotEnoughPriceSamples      = reverts.New(102, "not enough price samples collected")
	ErrNoRewardsToSell            = reverts.New(103, "reserve holds no rewards to sell")
	ErrSellWithLessThanMinimumOut = reverts.New(104, "swap returned less than the minimum acceptable output")
	ErrInvalidWrapVersion         = reverts.New(105, "wrap instance layout version mismatch")
	ErrInvalidWrapSize            = reverts.New(106, "wrap instance account size mismatch")
)

// PriceSample is one observation of the swap pool's price, in proceeds
// units per whole share.
type PriceSample struct {
	ProceedsPerShare uint64
	Slot             uint64
}

// PriceRing keeps the last NumPriceSamples observations, oldest first.
type PriceRing struct {
	Samples [NumPriceSamples]PriceSample
	Count   uint8
	Next    uint8
}

// Push records a sample, evicting the oldest when full.
func (r *PriceRing) Push(sample PriceSample) {
	r.Samples[r.Next] = sample
	r.Next = (r.Next + 1) % NumPriceSamples
	if r.Count < NumPriceSamples {
		r.Count++
	}
}

// Latest returns the most recent sample.
func (r *PriceRing) Latest() (PriceSample, bool) {
	if r.Count == 0 {
		return PriceSample{}, false
	}
	return r.Samples[(r.Next+NumPriceSamples-1)%NumPriceSamples], true
}

// Median returns the median price over a full, fresh ring. Every sample must
// be no older than MaxSampleAge at the given slot.
func (r *PriceRing) Median(currentSlot uint64) (uint64, error) {
	if r.Count < NumPriceSamples {
		return 0, ErrNotEnoughPriceSamples
	}
	var prices [NumPriceSamples]uint64
	for i, sample := range r.Samples {
		if sample.Slot+MaxSampleAge < currentSlot {
			return 0, ErrPriceSampleStale
		}
		prices[i] = sample.ProceedsPerShare
	}
	// insertion sort, the ring is tiny
	for i := 1; i < len(prices); i++ {
		for j := i; j > 0 && prices[j-1] > prices[j]; j-- {
			prices[j-1], prices[j] = prices[j], prices[j-1]
		}
	}
	return prices[NumPriceSamples/2], nil
}

// Version current layout version of the wrap instance account.
const Version uint8 = 1

// State is the persisted state of one wrap instance.
type State struct {
	Version uint8

	// Manager may change the sell parameters.
	Manager meridian.Address

	// Pool is the pool instance account this wrap is bound to.
	Pool meridian.Address

	// ShareMint is the pool-share mint, cached from the pool at initialize.
	ShareMint meridian.Address

	// WrappedMint is the mint of the wrapped token.
	WrappedMint meridian.Address

	// ProceedsMint is the mint the swap pool pays out in.
	ProceedsMint meridian.Address

	// Destination is the recipient address on the other chain.
	Destination meridian.Bytes32

	// MinOutBps bounds the accepted swap output: a sell must return at
	// least the median-price value times MinOutBps basis points.
	MinOutBps uint64

	Prices PriceRing
}

const stateSize = 1 + // version
	5*meridian.AddressLength + // manager, pool, share mint, wrapped mint, proceeds mint
	32 + // destination
	8 + // min out bps
	NumPriceSamples*16 + 2 // price ring

// Serialize encodes the state to its fixed-size account layout.
func (s *State) Serialize() []byte {
	out := make([]byte, 0, stateSize)
	le := binary.LittleEndian
	out = append(out, s.Version)
	out = append(out, s.Manager[:]...)
	out = append(out, s.Pool[:]...)
	out = append(out, s.ShareMint[:]...)
	out = append(out, s.WrappedMint[:]...)
	out = append(out, s.ProceedsMint[:]...)
	out = append(out, s.Destination[:]...)
	out = le.AppendUint64(out, s.MinOutBps)
	for _, sample := range s.Prices.Samples {
		out = le.AppendUint64(out, sample.ProceedsPerShare)
		out = le.AppendUint64(out, sample.Slot)
	}
	out = append(out, s.Prices.Count, s.Prices.Next)
	return out
}

// Deserialize decodes a wrap instance account.
func Deserialize(data []byte) (*State, error) {
	if len(data) != stateSize {
		return nil, errors.WithMessagef(ErrInvalidWrapSize, "have %d bytes, want %d", len(data), stateSize)
	}
	le := binary.LittleEndian
	s := &State{Version: data[0]}
	if s.Version != Version {
		return nil, ErrInvalidWrapVersion
	}
	off := 1
	next := func(n int) []byte {
		chunk := data[off : off+n]
		off += n
		return chunk
	}
	copy(s.Manager[:], next(meridian.AddressLength))
	copy(s.Pool[:], next(meridian.AddressLength))
	copy(s.ShareMint[:], next(meridian.AddressLength))
	copy(s.WrappedMint[:], next(meridian.AddressLength))
	copy(s.ProceedsMint[:], next(meridian.AddressLength))
	copy(s.Destination[:], next(32))
	s.MinOutBps = le.Uint64(next(8))
	for i := range s.Prices.Samples {
		s.Prices.Samples[i].ProceedsPerShare = le.Uint64(next(8))
		s.Prices.Samples[i].Slot = le.Uint64(next(8))
	}
	s.Prices.Count = next(1)[0]
	s.Prices.Next = next(1)[0]
	return s, nil
}

// minimumOut is the smallest acceptable swap output for selling the given
// shares at the median price.
func (s *State) minimumOut(shares token.Shares, medianPrice uint64) (uint64, error) {
	value, err := shares.MulRatio(token.Ratio{
		Numerator:   medianPrice,
		Denominator: uint64(meridian.NativePerCoin),
	})
	if err != nil {
		return 0, err
	}
	out, err := value.MulRatio(token.Ratio{Numerator: s.MinOutBps, Denominator: 10_000})
	return uint64(out), err
}
