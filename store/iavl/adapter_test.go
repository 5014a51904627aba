package iavl

import (
	"crypto/rand"
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

type Model = store.Model
type Op = store.Op

// makeBase returns the base layer
func makeBase() (store.CacheableKVStore, func()) {
	commit, close := makeCommitStore()
	return commit.Adapter(), close
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit := NewCommitStore(tmpDir, "base")
	close := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, close
}

func TestAdapterSuite(t *testing.T) {
	suite := store.NewTestSuite(makeBase)

	t.Run("get set", suite.GetSet)
	t.Run("cache conflicts", suite.CacheConflicts)
	t.Run("fuzz iterator", suite.FuzzIterator)
	t.Run("iterator with conflicts", suite.IteratorWithConflicts)
}

func TestCommitOverwrite(t *testing.T) {
	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model // Key is what we query, Value is what we expect
	}{
		"overwrite one, delete another, add a third": {
			[]Op{store.SetOp(ks[1], vs[1]), store.SetOp(ks[2], vs[2])},
			[]Op{store.SetOp(ks[1], vs[11]), store.SetOp(ks[3], vs[7]), store.DelOp(ks[2])},
			[]Model{store.Pair(ks[1], vs[1]), store.Pair(ks[2], vs[2]), store.Pair(ks[3], nil)},
			[]Model{store.Pair(ks[1], vs[11]), store.Pair(ks[2], nil), store.Pair(ks[3], vs[7])},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			commit, close := makeCommitStore()
			defer close()
			// only one to trigger a cleanup
			commit.numHistory = 1
			suite := store.NewTestSuite(nil)

			id, err := commit.LatestVersion()
			assert.Nil(t, err)
			assert.Equal(t, int64(0), id.Version)
			if len(id.Hash) != 0 {
				t.Fatal("hash is not empty")
			}

			parent := commit.CacheWrap()
			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			assert.Nil(t, parent.Write())
			id, err = commit.Commit()
			assert.Nil(t, err)
			assert.Equal(t, int64(1), id.Version)
			if len(id.Hash) == 0 {
				t.Fatal("hash is empty")
			}

			child := commit.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			// and a side-cache wrap to see they are in parallel
			side := commit.CacheWrap()
			for _, q := range tc.parentQueries {
				suite.AssertGetHas(t, side, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				suite.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			// write child to parent and make sure it also shows proper data
			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				suite.AssertGetHas(t, side, q.Key, q.Value, q.Value != nil)
			}
			id, err = commit.Commit()
			assert.Nil(t, err)
			assert.Equal(t, int64(2), id.Version)
		})
	}
}

func TestCommitStoreReload(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	commit := NewCommitStore(tmpDir, "reload")
	assert.Nil(t, commit.LoadLatestVersion())
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("escrow"), []byte("open")))
	assert.Nil(t, cache.Write())
	first, err := commit.Commit()
	assert.Nil(t, err)

	// uncommitted data is not visible through Get
	cache = commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("pending"), []byte("x")))
	assert.Nil(t, cache.Write())
	got, err := commit.Get([]byte("pending"))
	assert.Nil(t, err)
	if got != nil {
		t.Fatalf("uncommitted value visible: %X", got)
	}
	commit.Close()

	reopened := NewCommitStore(tmpDir, "reload")
	defer reopened.Close()
	assert.Nil(t, reopened.LoadLatestVersion())
	id, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, first.Version, id.Version)
	assert.Equal(t, first.Hash, id.Hash)
	got, err = reopened.Get([]byte("escrow"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("open"), got)
}

func TestMemCommitStore(t *testing.T) {
	commit := NewMemCommitStore()
	assert.Nil(t, commit.LoadLatestVersion())
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("a"), []byte("b")))
	assert.Nil(t, cache.Write())
	id, err := commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)

	got, err := commit.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("b"), got)
}

// randKeys returns a slice of count keys, all of a given size
func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = make([]byte, size)
		_, _ = rand.Read(res[i])
	}
	return res
}
