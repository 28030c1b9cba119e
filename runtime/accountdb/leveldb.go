// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accountdb provides runtime.Store implementations: a persistent
// leveldb-backed store for the command, and an in-memory store for tests.
package accountdb

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/token"
)

// Options options for creating a level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// LevelDB is a persistent runtime.Store.
type LevelDB struct {
	db *leveldb.DB
}

var _ runtime.Store = (*LevelDB)(nil)

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts.CacheSize, opts.OpenFilesCacheCapacity)
}

func openLevelDB(stg storage.Storage, cacheSize, openFilesCacheCapacity int) (*LevelDB, error) {
	if cacheSize < 16 {
		cacheSize = 16
	}
	if openFilesCacheCapacity < 16 {
		openFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// Get retrieves the account, or runtime.ErrNotFound.
func (ldb *LevelDB) Get(address meridian.Address) (*runtime.Account, error) {
	value, err := ldb.db.Get(address.Bytes(), &readOpt)
	if err == leveldb.ErrNotFound {
		return nil, runtime.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get account")
	}
	return decodeAccount(value)
}

// Put creates or replaces the account.
func (ldb *LevelDB) Put(address meridian.Address, account *runtime.Account) error {
	return ldb.db.Put(address.Bytes(), encodeAccount(account), &writeOpt)
}

// Delete removes the account.
func (ldb *LevelDB) Delete(address meridian.Address) error {
	has, err := ldb.db.Has(address.Bytes(), &readOpt)
	if err != nil {
		return errors.Wrap(err, "delete account")
	}
	if !has {
		return runtime.ErrNotFound
	}
	return ldb.db.Delete(address.Bytes(), &writeOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

func encodeAccount(account *runtime.Account) []byte {
	buf := make([]byte, meridian.AddressLength+8+len(account.Data))
	copy(buf, account.Owner[:])
	binary.LittleEndian.PutUint64(buf[meridian.AddressLength:], uint64(account.Balance))
	copy(buf[meridian.AddressLength+8:], account.Data)
	return buf
}

func decodeAccount(value []byte) (*runtime.Account, error) {
	if len(value) < meridian.AddressLength+8 {
		return nil, errors.New("account record too short")
	}
	account := &runtime.Account{
		Owner:   meridian.BytesToAddress(value[:meridian.AddressLength]),
		Balance: token.Native(binary.LittleEndian.Uint64(value[meridian.AddressLength:])),
		Data:    append([]byte(nil), value[meridian.AddressLength+8:]...),
	}
	return account, nil
}
