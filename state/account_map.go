// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
)

// AccountMapEntry pairs an address with its entry.
type AccountMapEntry[T any] struct {
	Address meridian.Address
	Entry   T
}

// AccountMap is a capacity-bounded ordered collection keyed by address. The
// capacity is fixed when the instance account is created, because it
// determines the serialized size. Iteration order is insertion order, except
// that Remove moves the last entry into the removed slot.
type AccountMap[T any] struct {
	Entries        []AccountMapEntry[T]
	MaximumEntries uint32
}

// NewAccountMap creates an empty map with the given capacity.
func NewAccountMap[T any](maximumEntries uint32) AccountMap[T] {
	return AccountMap[T]{
		Entries:        make([]AccountMapEntry[T], 0, maximumEntries),
		MaximumEntries: maximumEntries,
	}
}

// Len returns the number of entries.
func (m *AccountMap[T]) Len() int {
	return len(m.Entries)
}

// Add appends a new entry, rejecting duplicates and overflow.
func (m *AccountMap[T]) Add(address meridian.Address, entry T) error {
	if uint32(len(m.Entries)) >= m.MaximumEntries {
		return reverts.ErrMaximumNumberOfAccountsExceeded
	}
	if _, err := m.Get(address); err == nil {
		return reverts.ErrDuplicatedEntry
	}
	m.Entries = append(m.Entries, AccountMapEntry[T]{Address: address, Entry: entry})
	return nil
}

// Get returns a pointer into the map, valid until the next mutation.
func (m *AccountMap[T]) Get(address meridian.Address) (*T, error) {
	for i := range m.Entries {
		if m.Entries[i].Address == address {
			return &m.Entries[i].Entry, nil
		}
	}
	return nil, reverts.ErrInvalidAccountMember
}

// Remove deletes the entry by moving the last one into its slot.
func (m *AccountMap[T]) Remove(address meridian.Address) (T, error) {
	for i := range m.Entries {
		if m.Entries[i].Address == address {
			removed := m.Entries[i].Entry
			last := len(m.Entries) - 1
			m.Entries[i] = m.Entries[last]
			m.Entries = m.Entries[:last]
			return removed, nil
		}
	}
	var zero T
	return zero, reverts.ErrInvalidAccountMember
}

// At returns the entry at position i.
func (m *AccountMap[T]) At(i int) (*AccountMapEntry[T], error) {
	if i < 0 || i >= len(m.Entries) {
		return nil, reverts.ErrAccountListIndexOutOfBounds
	}
	return &m.Entries[i], nil
}

// Contains reports membership.
func (m *AccountMap[T]) Contains(address meridian.Address) bool {
	_, err := m.Get(address)
	return err == nil
}

// AccountSet is an AccountMap without payload, used for the maintainer set.
type AccountSet = AccountMap[struct{}]

// NewAccountSet creates an empty set with the given capacity.
func NewAccountSet(maximumEntries uint32) AccountSet {
	return NewAccountMap[struct{}](maximumEntries)
}
