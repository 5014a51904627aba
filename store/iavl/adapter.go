// Package iavl provides the persistent, merkle-ized commit store the
// ledger state lives in.
package iavl

import (
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// DefaultCacheSize is the number of nodes the tree keeps in memory.
	DefaultCacheSize = 10000
	// DefaultHistory is the number of committed versions kept on disk.
	DefaultHistory = 20
)

// CommitStore manages a iavl committed state
type CommitStore struct {
	db         dbm.DB
	tree       *iavl.MutableTree
	numHistory int64
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with disk backing. The database is
// stored in dir/name.db using goleveldb.
func NewCommitStore(dir, name string) *CommitStore {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	return newCommitStore(db)
}

// NewMemCommitStore returns a store keeping all versions in memory.
func NewMemCommitStore() *CommitStore {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) *CommitStore {
	return &CommitStore{
		db:         db,
		tree:       iavl.NewMutableTree(db, DefaultCacheSize),
		numHistory: DefaultHistory,
	}
}

// Close releases the underlying database.
func (s *CommitStore) Close() {
	s.db.Close()
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist. Panics on nil key.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	// release an old version of history, if it exists
	if toRelease := version - s.numHistory; toRelease > 0 && s.tree.VersionExists(toRelease) {
		if err := s.tree.DeleteVersion(toRelease); err != nil {
			return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}

	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// Adapter returns a wrapped version of the tree.
//
// Data written here is stored in the tip of the version tree,
// and will be written to disk on Commit. There is no way
// to rollback writes here, without throwing away the CommitStore
// and re-loading from disk.
func (s *CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: adapter{tree: s.tree}}
}

// CacheWrap wraps the Adapter with a cache, so it may be written
// or discarded as needed.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// adapter converts the working iavl.MutableTree to match the
// ledger store interfaces.
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = adapter{}

// Get returns nil iff key doesn't exist. Panics on nil key.
func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists. Panics on nil key.
func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that can write multiple ops atomically
func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
// Start must be less than end, or the Iterator is invalid.
func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
// Start must be less than end, or the Iterator is invalid.
func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, false), nil
}

func (a adapter) collect(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key []byte, value []byte) bool {
		res = append(res, store.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
