// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accountdb

import (
	"sync"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/runtime"
)

// Memory is an in-memory runtime.Store, used by tests and the simulator.
type Memory struct {
	mu       sync.Mutex
	accounts map[meridian.Address]*runtime.Account
}

var _ runtime.Store = (*Memory)(nil)

// NewMem creates an empty in-memory store.
func NewMem() *Memory {
	return &Memory{accounts: make(map[meridian.Address]*runtime.Account)}
}

// Get retrieves the account, or runtime.ErrNotFound.
func (m *Memory) Get(address meridian.Address) (*runtime.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[address]
	if !ok {
		return nil, runtime.ErrNotFound
	}
	cpy := *account
	cpy.Data = append([]byte(nil), account.Data...)
	return &cpy, nil
}

// Put creates or replaces the account.
func (m *Memory) Put(address meridian.Address, account *runtime.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := *account
	cpy.Data = append([]byte(nil), account.Data...)
	m.accounts[address] = &cpy
	return nil
}

// Delete removes the account.
func (m *Memory) Delete(address meridian.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[address]; !ok {
		return runtime.ErrNotFound
	}
	delete(m.accounts, address)
	return nil
}

// Addresses returns all stored addresses, for tooling.
func (m *Memory) Addresses() []meridian.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]meridian.Address, 0, len(m.accounts))
	for addr := range m.accounts {
		out = append(out, addr)
	}
	return out
}
