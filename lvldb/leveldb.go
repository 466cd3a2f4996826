// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb stores ledger records in goleveldb.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/stakeledger/kv"
)

var _ kv.StoreCloser = (*LevelDB)(nil)

// ErrReadOnly is returned by writes to a database opened with Options.ReadOnly.
var ErrReadOnly = errors.New("ledger database is read-only")

// Options for opening a ledger database.
type Options struct {
	CacheSize              int // in MiB, at least 16
	OpenFilesCacheCapacity int
	// ReadOnly opens an existing database for inspection. It is never created.
	ReadOnly bool
	// NoSync skips the fsync after each commit. Only for throwaway databases.
	NoSync bool
}

// LevelDB is a kv.Store over goleveldb. Every record batch of a ledger
// operation is written with a single Write.
type LevelDB struct {
	db       *leveldb.DB
	writeOpt *opt.WriteOptions
	readOnly bool
}

// New opens the ledger database at path, creating it unless opts.ReadOnly is set.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, opts.ReadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "open ledger storage")
	}
	return open(stg, opts)
}

// NewMem creates a database in memory, used for scenario replay and tests.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{NoSync: true})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, 16)
	openFiles := max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFiles,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		ReadOnly:               opts.ReadOnly,
		ErrorIfMissing:         opts.ReadOnly,
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open ledger database")
	}
	return &LevelDB{
		db:       db,
		writeOpt: &opt.WriteOptions{Sync: !opts.NoSync},
		readOnly: opts.ReadOnly,
	}, nil
}

// IsNotFound reports whether err from Get means the record does not exist.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, nil)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	if ldb.readOnly {
		return ErrReadOnly
	}
	return ldb.db.Put(key, value, ldb.writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	if ldb.readOnly {
		return ErrReadOnly
	}
	return ldb.db.Delete(key, ldb.writeOpt)
}

// Close closes the database. Later operations all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// Bulk returns a batch whose ops are written atomically by Write.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &batch{ldb: ldb, batch: new(leveldb.Batch)}
}

// Iterate iterates the records within r in key order.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, nil)
}

type batch struct {
	ldb   *LevelDB
	batch *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *batch) Len() int {
	return b.batch.Len()
}

// Write commits the batch. An empty batch touches nothing.
func (b *batch) Write() error {
	if b.batch.Len() == 0 {
		return nil
	}
	if b.ldb.readOnly {
		return ErrReadOnly
	}
	if err := b.ldb.db.Write(b.batch, b.ldb.writeOpt); err != nil {
		return errors.Wrap(err, "write record batch")
	}
	return nil
}
