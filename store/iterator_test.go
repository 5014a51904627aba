package store

import (
	"testing"

	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestCacheIteratorIsSnapshot(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("A")))
	cache := db.CacheWrap()

	it, err := cache.Iterator([]byte("a"), []byte("z"))
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	// Writes after creation are not visible to the iterator.
	assert.Nil(t, cache.Set([]byte("b"), []byte("B")))

	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"a"}, keys)
	assert.Nil(t, db.Delete([]byte("a")))
}

func TestCacheReverseIteratorSkipsDeleted(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"a", "b", "c"} {
		assert.Nil(t, db.Set([]byte(k), []byte(k)))
	}
	cache := db.CacheWrap()
	assert.Nil(t, cache.Delete([]byte("b")))

	it, err := cache.ReverseIterator(nil, nil)
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	defer it.Close()

	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"c", "a"}, keys)
}
