// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	disk, err := New(filepath.Join(t.TempDir(), "ledger.db"), Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	require.NoError(t, err)
	defer disk.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{disk, mem} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDB_Bulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	require.NoError(t, bulk.Put([]byte("a"), []byte("1")))
	require.NoError(t, bulk.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, bulk.Len())

	_, err = db.Get([]byte("a"))
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, bulk.Write())
	got, err := db.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
}

func TestLevelDB_BucketIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	stakes := kv.Bucket("s").NewStore(db)
	require.NoError(t, stakes.Put([]byte("2"), []byte("b")))
	require.NoError(t, stakes.Put([]byte("1"), []byte("a")))
	require.NoError(t, db.Put([]byte("t1"), []byte("other")))

	iter := stakes.Iterate(kv.Range{})
	defer iter.Release()

	var keys, values []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		values = append(values, string(iter.Value()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"1", "2"}, keys)
	assert.Equal(t, []string{"a", "b"}, values)
}

func TestLevelDB_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	_, err := New(path, Options{ReadOnly: true})
	assert.Error(t, err, "a missing ledger is never created read-only")

	db, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("cfg"), []byte("1")))
	require.NoError(t, db.Close())

	ro, err := New(path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer ro.Close()

	got, err := ro.Get([]byte("cfg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	assert.ErrorIs(t, ro.Put([]byte("cfg"), []byte("2")), ErrReadOnly)
	assert.ErrorIs(t, ro.Delete([]byte("cfg")), ErrReadOnly)

	bulk := ro.Bulk()
	assert.NoError(t, bulk.Write(), "an empty batch is a no-op")
	require.NoError(t, bulk.Put([]byte("cfg"), []byte("2")))
	assert.ErrorIs(t, bulk.Write(), ErrReadOnly)
}
