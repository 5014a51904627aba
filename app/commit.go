package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// CommitStore keeps the two scratch views of the ledger state: one that
// block execution writes to and one used to screen mempool transactions.
// Neither view is visible to queries until Commit.
type CommitStore struct {
	committed ledger.CommitKVStore
	deliver   ledger.KVCacheWrap
	check     ledger.KVCacheWrap
}

// NewCommitStore opens the latest persisted version of the state. A store
// that cannot be opened leaves the node unusable, so this panics.
func NewCommitStore(store ledger.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the version and root hash of the last committed block.
func (cs *CommitStore) CommitInfo() (ledger.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit persists everything the block wrote and starts fresh views on top
// of the new version. Pending mempool state is dropped.
func (cs *CommitStore) Commit() (ledger.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return ledger.CommitID{}, err
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// CheckStore is the view CheckTx runs against.
func (cs *CommitStore) CheckStore() ledger.CacheableKVStore {
	return cs.check
}

// DeliverStore is the view block transactions and genesis write to.
func (cs *CommitStore) DeliverStore() ledger.CacheableKVStore {
	return cs.deliver
}

// chainIDKey lives outside every bucket namespace, so no extension can
// overwrite it.
const chainIDKey = "_ledger:chainID"

// mustLoadChainID reads the chain the state was created for. An empty
// result means genesis has not run yet.
func mustLoadChainID(kv ledger.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(v)
}

// saveChainID records the chain ID at genesis. It can only be written once.
func saveChainID(kv ledger.KVStore, chainID string) error {
	if !ledger.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	switch exists, err := kv.Has(k); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case exists:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is fixed at genesis")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
