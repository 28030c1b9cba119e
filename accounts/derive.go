// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"

	"github.com/meridian-pool/meridian/meridian"
)

// Derived addresses are re-computed on every instruction, and the same
// handful of (instance, role) pairs comes up again and again, so the blake2b
// results are memoized.
var deriveCache, _ = lru.New(4096)

// Derive computes the program-derived address for the given seeds. Each seed
// is length-prefixed so distinct seed lists cannot collide.
func Derive(program meridian.Address, seeds ...[]byte) meridian.Address {
	var key []byte
	key = append(key, program[:]...)
	for _, seed := range seeds {
		key = binary.LittleEndian.AppendUint32(key, uint32(len(seed)))
		key = append(key, seed...)
	}
	if cached, ok := deriveCache.Get(string(key)); ok {
		return cached.(meridian.Address)
	}
	derived := meridian.Address(meridian.Blake2b(key))
	deriveCache.Add(string(key), derived)
	return derived
}

// DeriveSeeded derives the address for a numbered account, such as a
// validator's stake account at a given seed.
func DeriveSeeded(program meridian.Address, base meridian.Address, role string, seed uint64) meridian.Address {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	return Derive(program, base[:], []byte(role), seedBytes[:])
}
