package orm

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestRawQuery(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("raw")
	assert.Nil(t, b.Set(db, []byte("a"), []byte("1")))
	assert.Nil(t, b.Set(db, []byte("b"), []byte("2")))
	assert.Nil(t, db.Set([]byte("zz"), []byte("3")))

	qr := ledger.NewQueryRouter()
	RegisterQuery(qr)
	h := qr.Handler("/")

	res, err := h.Query(db, ledger.KeyQueryMod, []byte("raw:b"))
	assert.Nil(t, err)
	assert.Equal(t, []ledger.Model{ledger.Pair([]byte("raw:b"), []byte("2"))}, res)

	res, err = h.Query(db, ledger.KeyQueryMod, []byte("raw:c"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	res, err = h.Query(db, ledger.PrefixQueryMod, []byte("raw:"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	res, err = h.Query(db, ledger.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(res))

	_, err = h.Query(db, "range", nil)
	assert.IsErr(t, errors.ErrInput, err)
}
