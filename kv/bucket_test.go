// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/collator/kv"
	"github.com/vechain/collator/lvldb"
)

func newStore(t *testing.T) kv.Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBucketGetPut(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Put([]byte("k1"), []byte("v1")))

	tests := []struct {
		b     kv.Bucket
		key   string
		want  string
		found bool
	}{
		{kv.Bucket(""), "k1", "v1", true},
		{kv.Bucket("k"), "1", "v1", true},
		{kv.Bucket("k1"), "", "v1", true},
		{kv.Bucket("k"), "k1", "", false},
	}
	for _, tt := range tests {
		got, err := tt.b.NewGetter(store).Get([]byte(tt.key))
		if !tt.found {
			assert.True(t, store.IsNotFound(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}

	gp := kv.Bucket("staker/").NewGetPutter(store)
	require.NoError(t, gp.Put([]byte("x"), []byte("y")))
	raw, err := store.Get([]byte("staker/x"))
	require.NoError(t, err)
	assert.Equal(t, "y", string(raw))

	require.NoError(t, gp.Delete([]byte("x")))
	has, err := gp.Has([]byte("x"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBucketBatchAndIterate(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Put([]byte("other"), []byte("-")))

	bucket := kv.Bucket("bank/")
	batch := bucket.NewBatch(store.NewBatch())
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	assert.Equal(t, 2, batch.Len())
	require.NoError(t, batch.Write())

	it := bucket.Iterate(store, kv.Range{})
	defer it.Release()

	var keys, values []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, []string{"1", "2"}, values)
}
