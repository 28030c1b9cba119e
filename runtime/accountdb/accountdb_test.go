// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accountdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/runtime"
)

func TestStores(t *testing.T) {
	ldb, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	defer ldb.Close()

	for name, store := range map[string]runtime.Store{
		"leveldb": ldb,
		"memory":  NewMem(),
	} {
		t.Run(name, func(t *testing.T) {
			addr := meridian.BytesToAddress([]byte("account-1"))
			owner := meridian.BytesToAddress([]byte("program"))

			_, err := store.Get(addr)
			assert.ErrorIs(t, err, runtime.ErrNotFound)

			account := &runtime.Account{Owner: owner, Balance: 42, Data: []byte{1, 2, 3}}
			require.NoError(t, store.Put(addr, account))

			got, err := store.Get(addr)
			require.NoError(t, err)
			assert.Equal(t, account, got)

			// mutating the returned copy must not touch the store
			got.Data[0] = 9
			again, err := store.Get(addr)
			require.NoError(t, err)
			assert.Equal(t, byte(1), again.Data[0])

			require.NoError(t, store.Delete(addr))
			assert.ErrorIs(t, store.Delete(addr), runtime.ErrNotFound)
		})
	}
}

func TestAccountWithoutData(t *testing.T) {
	store := NewMem()
	addr := meridian.BytesToAddress([]byte("plain"))
	require.NoError(t, store.Put(addr, &runtime.Account{Balance: 7}))

	got, err := store.Get(addr)
	require.NoError(t, err)
	assert.Empty(t, got.Data)
	assert.Len(t, store.Addresses(), 1)
}
