package orm

import (
	"encoding/binary"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

// counter is a minimal model with an owner used for indexing.
type counter struct {
	Owner []byte
	Count uint64
}

func (c *counter) Marshal() ([]byte, error) {
	out := make([]byte, 8+len(c.Owner))
	binary.LittleEndian.PutUint64(out, c.Count)
	copy(out[8:], c.Owner)
	return out, nil
}

func (c *counter) Unmarshal(raw []byte) error {
	if len(raw) < 8 {
		return errors.Wrap(errors.ErrInput, "too short")
	}
	c.Count = binary.LittleEndian.Uint64(raw)
	c.Owner = append([]byte(nil), raw[8:]...)
	return nil
}

func (c *counter) Validate() error {
	if len(c.Owner) != 4 {
		return errors.Wrap(errors.ErrInput, "owner must be 4 bytes")
	}
	return nil
}

func counterOwner(m Model) ([]byte, error) {
	c, ok := m.(*counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return c.Owner, nil
}

type otherModel struct{ counter }

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	if err := b.Put(db, []byte("c1"), &counter{Owner: []byte("abcd"), Count: 1}); err != nil {
		t.Fatalf("cannot save counter instance: %s", err)
	}

	var c1 counter
	if err := b.One(db, []byte("c1"), &c1); err != nil {
		t.Fatalf("cannot get c1 counter: %s", err)
	}
	assert.Equal(t, uint64(1), c1.Count)
	assert.Nil(t, b.Has(db, []byte("c1")))

	var wrong otherModel
	assert.IsErr(t, errors.ErrType, b.One(db, []byte("c1"), &wrong))
	assert.IsErr(t, errors.ErrType, b.Put(db, []byte("c2"), &wrong))
	assert.IsErr(t, errors.ErrInput, b.Put(db, []byte("c2"), &counter{Owner: []byte("x")}))

	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete c1 counter: %s", err)
	}
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, []byte("unknown")))
	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("c1"), &c1))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
}

func TestModelBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{}, WithIndex("owner", counterOwner))

	assert.Nil(t, b.Put(db, []byte("a"), &counter{Owner: []byte("ownA"), Count: 1}))
	assert.Nil(t, b.Put(db, []byte("b"), &counter{Owner: []byte("ownA"), Count: 2}))
	assert.Nil(t, b.Put(db, []byte("c"), &counter{Owner: []byte("ownB"), Count: 3}))

	keys, err := b.ByIndex(db, "owner", []byte("ownA"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, keys)

	// moving an entity to another owner updates the index
	assert.Nil(t, b.Put(db, []byte("b"), &counter{Owner: []byte("ownB"), Count: 2}))
	keys, err = b.ByIndex(db, "owner", []byte("ownB"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("c")}, keys)

	assert.Nil(t, b.Delete(db, []byte("c")))
	keys, err = b.ByIndex(db, "owner", []byte("ownB"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("b")}, keys)

	_, err = b.ByIndex(db, "missing", nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{}, WithIndex("owner", counterOwner))
	assert.Nil(t, b.Put(db, []byte("a1"), &counter{Owner: []byte("ownA"), Count: 1}))
	assert.Nil(t, b.Put(db, []byte("a2"), &counter{Owner: []byte("ownA"), Count: 2}))
	assert.Nil(t, b.Put(db, []byte("b1"), &counter{Owner: []byte("ownB"), Count: 3}))

	qr := ledger.NewQueryRouter()
	b.Register("counters", qr)

	h := qr.Handler("/counters")
	if h == nil {
		t.Fatal("bucket not registered")
	}
	res, err := h.Query(db, ledger.KeyQueryMod, []byte("a1"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, []byte("cnts:a1"), res[0].Key)

	res, err = h.Query(db, ledger.PrefixQueryMod, []byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	res, err = h.Query(db, ledger.KeyQueryMod, []byte("zz"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	idx := qr.Handler("/counters/owner")
	if idx == nil {
		t.Fatal("index not registered")
	}
	res, err = idx.Query(db, ledger.KeyQueryMod, []byte("ownB"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, []byte("cnts:b1"), res[0].Key)
}

func TestPrefixRangeEnd(t *testing.T) {
	assert.Equal(t, []byte("cnts;"), prefixRangeEnd([]byte("cnts:")))
	assert.Equal(t, []byte{0x01}, prefixRangeEnd([]byte{0x00, 0xff}))
	if prefixRangeEnd([]byte{0xff, 0xff}) != nil {
		t.Fatal("all 0xff prefix has no end")
	}
}
