// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/reverts"
)

func addr(b byte) meridian.Address {
	var a meridian.Address
	a[0] = b
	return a
}

func TestBind(t *testing.T) {
	sysvar := addr(9)
	table := []Meta{
		{Name: "instance", Writable: true},
		{Name: "user", Signer: true},
		{Name: "clock", Fixed: &sysvar},
	}
	infos := []Info{
		{Address: addr(1), Writable: true},
		{Address: addr(2), Signer: true},
		{Address: sysvar},
	}

	bound, err := Bind(table, infos)
	require.NoError(t, err)
	assert.Equal(t, addr(1), bound["instance"].Address)
	assert.Equal(t, addr(2), bound["user"].Address)

	t.Run("missing account", func(t *testing.T) {
		_, err := Bind(table, infos[:2])
		assert.ErrorIs(t, err, reverts.ErrInvalidAccountInfo)
	})

	t.Run("extra account", func(t *testing.T) {
		_, err := Bind(table, append(append([]Info{}, infos...), Info{Address: addr(4)}))
		assert.ErrorIs(t, err, reverts.ErrTooManyAccountKeys)
	})

	t.Run("signature missing", func(t *testing.T) {
		altered := append([]Info{}, infos...)
		altered[1].Signer = false
		_, err := Bind(table, altered)
		assert.ErrorIs(t, err, reverts.ErrSignatureMissing)
	})

	t.Run("not writable", func(t *testing.T) {
		altered := append([]Info{}, infos...)
		altered[0].Writable = false
		_, err := Bind(table, altered)
		assert.ErrorIs(t, err, reverts.ErrInvalidAccountInfo)
	})

	t.Run("fixed address mismatch", func(t *testing.T) {
		altered := append([]Info{}, infos...)
		altered[2].Address = addr(8)
		_, err := Bind(table, altered)
		assert.ErrorIs(t, err, reverts.ErrInvalidAccountInfo)
	})
}

func TestDerive(t *testing.T) {
	program := addr(1)
	base := addr(2)

	first := Derive(program, base[:], []byte("reserve"))
	again := Derive(program, base[:], []byte("reserve"))
	assert.Equal(t, first, again)

	other := Derive(program, base[:], []byte("mint-authority"))
	assert.NotEqual(t, first, other)

	// length prefixing keeps seed boundaries apart
	a := Derive(program, []byte("ab"), []byte("c"))
	b := Derive(program, []byte("a"), []byte("bc"))
	assert.NotEqual(t, a, b)
}

func TestDeriveSeeded(t *testing.T) {
	program := addr(1)
	voter := addr(3)

	s0 := DeriveSeeded(program, voter, "stake", 0)
	s1 := DeriveSeeded(program, voter, "stake", 1)
	u0 := DeriveSeeded(program, voter, "unstake", 0)

	assert.NotEqual(t, s0, s1)
	assert.NotEqual(t, s0, u0)
	assert.Equal(t, s0, DeriveSeeded(program, voter, "stake", 0))
}

func TestCheckDerived(t *testing.T) {
	assert.NoError(t, CheckDerived(addr(1), addr(1)))
	assert.ErrorIs(t, CheckDerived(addr(1), addr(2)), reverts.ErrInvalidDerivedAccount)
}
