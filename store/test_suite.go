package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/iov-one/ledger/ledgertest/assert"
)

// TestSuite runs the same behaviour checks against every CacheableKVStore
// implementation. Block execution stacks cache layers on top of the
// committed state, so each store must agree on how writes, discards and
// range scans propagate between layers.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns an empty store and a function that
// releases it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet follows a value through two cache layers: a block that writes,
// a transaction that is rolled back and one that is kept.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	escrow, offer := []byte("escrow:maker"), []byte("receive=100")
	s.AssertGetHas(t, base, escrow, nil, false)
	assert.Nil(t, base.Set(escrow, offer))
	s.AssertGetHas(t, base, escrow, offer, true)

	block := base.CacheWrap()
	s.AssertGetHas(t, block, escrow, offer, true)

	vault, funds := []byte("vault:maker"), []byte("amount=40")
	s.AssertGetHas(t, block, vault, nil, false)
	assert.Nil(t, block.Set(vault, funds))
	s.AssertGetHas(t, block, vault, funds, true)
	s.AssertGetHas(t, base, vault, nil, false)

	assert.Nil(t, block.Write())
	s.AssertGetHas(t, base, escrow, offer, true)
	s.AssertGetHas(t, base, vault, funds, true)

	failed := base.CacheWrap()
	s.AssertGetHas(t, failed, escrow, offer, true)
	s.AssertGetHas(t, failed, vault, funds, true)
	refund := []byte("refund:maker")
	assert.Nil(t, failed.Set(refund, []byte("amount=40")))
	failed.Discard()

	take := base.CacheWrap()
	s.AssertGetHas(t, take, escrow, offer, true)
	assert.Nil(t, take.Delete(escrow))
	assert.Nil(t, take.Write())

	// A discarded layer still reads through to its parent.
	s.AssertGetHas(t, failed, escrow, nil, false)
	s.AssertGetHas(t, failed, vault, funds, true)
	s.AssertGetHas(t, failed, refund, nil, false)
}

// CacheConflicts checks that a child layer can shadow and delete values of
// its parent without the parent noticing until the child is written.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	cases := map[string]struct {
		parentOps []Op
		childOps  []Op
		// Key is queried, Value is expected. A nil Value means absent.
		parentWant []Model
		childWant  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:  []Op{SetOp(ks[1], vs[1]), SetOp(ks[2], vs[2])},
			childOps:   []Op{SetOp(ks[1], vs[11]), SetOp(ks[3], vs[7]), DelOp(ks[2])},
			parentWant: []Model{Pair(ks[1], vs[1]), Pair(ks[2], vs[2]), Pair(ks[3], nil)},
			childWant:  []Model{Pair(ks[1], vs[11]), Pair(ks[2], nil), Pair(ks[3], vs[7])},
		},
		"delete a key the parent never had": {
			parentOps:  []Op{SetOp(ks[4], vs[4])},
			childOps:   []Op{DelOp(ks[5]), SetOp(ks[4], vs[14])},
			parentWant: []Model{Pair(ks[4], vs[4]), Pair(ks[5], nil)},
			childWant:  []Model{Pair(ks[4], vs[14]), Pair(ks[5], nil)},
		},
		"set after delete restores the key": {
			parentOps:  []Op{SetOp(ks[6], vs[6])},
			childOps:   []Op{DelOp(ks[6]), SetOp(ks[6], vs[16])},
			parentWant: []Model{Pair(ks[6], vs[6])},
			childWant:  []Model{Pair(ks[6], vs[16])},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			for _, q := range tc.parentWant {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childWant {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.childWant {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// FuzzIterator scans random data in both directions with every
// combination of open and closed bounds. Deletes of keys that were never
// written must not show up in the scan.
func (s *TestSuite) FuzzIterator(t *testing.T) {
	const (
		size    = 50
		deletes = 20
	)

	childSet := randModels(size, 8, 40)
	childOps := append(
		makeSetOps(childSet...),
		makeDelOps(randModels(deletes, 8, 40)...)...)
	onlyChild := sortModels(childSet)

	parentSet := randModels(size, 8, 40)
	parentOps := append(
		makeSetOps(parentSet...),
		makeDelOps(randModels(deletes, 8, 40)...)...)
	merged := sortModels(append(childSet, parentSet...))

	bounds := func(want []Model) []rangeQuery {
		return []rangeQuery{
			{nil, nil, false, want},
			{want[10].Key, nil, false, want[10:]},
			{nil, want[size-8].Key, false, want[:size-8]},
			{want[17].Key, want[28].Key, false, want[17:28]},

			{nil, nil, true, reverse(want)},
			{want[34].Key, nil, true, reverse(want[34:])},
			{nil, want[19].Key, true, reverse(want[:19])},
			{want[6].Key, want[26].Key, true, reverse(want[6:26])},
		}
	}

	cases := map[string]iterCase{
		"child over an empty parent": {
			child:   childOps,
			queries: bounds(onlyChild),
		},
		"child merged with parent": {
			pre:     parentOps,
			child:   childOps,
			queries: bounds(merged),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// IteratorWithConflicts scans layers where the child shadows or deletes
// keys of its parent.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	ms := randModels(6, 20, 100)
	a, a2, b, b2, c, d := ms[0], ms[1], ms[2], ms[3], ms[4], ms[5]
	a2.Key = a.Key
	b2.Key = b.Key

	abc := sortModels([]Model{a, b, c})
	shadowed := sortModels([]Model{a2, b2, c, d})

	cases := map[string]iterCase{
		"child only": {
			child: makeSetOps(a, b, c),
			queries: []rangeQuery{
				{nil, nil, false, abc},
				{abc[1].Key, abc[2].Key, false, abc[1:2]},
				{nil, nil, true, reverse(abc)},
			},
		},
		"parent only": {
			pre: makeSetOps(a, b, c),
			queries: []rangeQuery{
				{nil, nil, false, abc},
				{abc[1].Key, abc[2].Key, false, abc[1:2]},
				{nil, nil, true, reverse(abc)},
			},
		},
		"disjoint layers": {
			pre:   makeSetOps(a, b),
			child: makeSetOps(c),
			queries: []rangeQuery{
				{nil, nil, false, abc},
				{abc[1].Key, abc[2].Key, false, abc[1:2]},
				{nil, nil, true, reverse(abc)},
			},
		},
		"child values win": {
			pre:   makeSetOps(a, b, c),
			child: makeSetOps(a2, b2, d),
			queries: []rangeQuery{
				{nil, nil, false, shadowed},
				{shadowed[1].Key, shadowed[3].Key, false, shadowed[1:3]},
				{nil, nil, true, reverse(shadowed)},
			},
		},
		"child deletes hide parent values": {
			pre:   makeSetOps(a, c, d),
			child: makeDelOps(a, b, d),
			queries: []rangeQuery{
				{nil, nil, false, []Model{c}},
				// end is exclusive
				{nil, c.Key, false, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// AssertGetHas checks that Get and Has agree about key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

//nolint
func randBytes(length int) []byte {
	res := make([]byte, length)
	rand.Read(res)
	return res
}

func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := range res {
		res[i] = randBytes(size)
	}
	return res
}

func randModels(count, keySize, valueSize int) []Model {
	models := make([]Model, count)
	for i := range models {
		models[i] = Pair(randBytes(keySize), randBytes(valueSize))
	}
	return models
}

// iterCase applies pre to the base store and child to a cache layer on
// top of it, then runs every query against the cache layer.
type iterCase struct {
	pre     []Op
	child   []Op
	queries []rangeQuery
}

func (i iterCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	for _, op := range i.pre {
		assert.Nil(t, op.Apply(base))
	}
	child := base.CacheWrap()
	for _, op := range i.child {
		assert.Nil(t, op.Apply(child))
	}

	for _, q := range i.queries {
		var (
			iter Iterator
			err  error
		)
		if q.reverse {
			iter, err = child.ReverseIterator(q.start, q.end)
		} else {
			iter, err = child.Iterator(q.start, q.end)
		}
		assert.Nil(t, err)

		for n, want := range q.expected {
			if !iter.Valid() {
				t.Fatalf("iterator exhausted after %d of %d items", n, len(q.expected))
			}
			if !bytes.Equal(want.Key, iter.Key()) {
				t.Fatalf("item %d: want key %X, got %X", n, want.Key, iter.Key())
			}
			assert.Equal(t, want.Value, iter.Value())
			iter.Next()
		}
		if iter.Valid() {
			t.Fatalf("unexpected extra key %X", iter.Key())
		}
		iter.Close()
	}
}

type rangeQuery struct {
	start    []byte
	end      []byte
	reverse  bool
	expected []Model
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func makeSetOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func makeDelOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
