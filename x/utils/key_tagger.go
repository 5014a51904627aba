package utils

import (
	"context"
	"encoding/hex"

	"github.com/iov-one/ledger"
	"github.com/tendermint/tendermint/libs/common"
)

// KeyTagger is a decorate that records all Set/Delete
// operations performed by it's children and adds all those keys
// as DeliverTx tags. Keys are hex encoded, the value is "s" for a write
// and "d" for a deletion.
type KeyTagger struct{}

var _ ledger.Decorator = KeyTagger{}

// NewKeyTagger creates a KeyTagger decorator
func NewKeyTagger() KeyTagger {
	return KeyTagger{}
}

// Check does nothing
func (KeyTagger) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx, next ledger.Checker) (*ledger.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver passes in a recording KVStore into the child and
// uses that to calculate tags to add to DeliverResult
func (KeyTagger) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx, next ledger.Deliverer) (*ledger.DeliverResult, error) {
	record := newRecordingStore(db)
	res, err := next.Deliver(ctx, record, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, changesToTags(record.changes)...)
	return res, nil
}

var (
	recordSet    = []byte("s")
	recordDelete = []byte("d")
)

func changesToTags(changes map[string]bool) common.KVPairs {
	if len(changes) == 0 {
		return nil
	}
	res := make(common.KVPairs, 0, len(changes))
	for k, deleted := range changes {
		tag := recordSet
		if deleted {
			tag = recordDelete
		}
		res = append(res, common.KVPair{
			Key:   []byte(hex.EncodeToString([]byte(k))),
			Value: tag,
		})
	}
	res.Sort()
	return res
}

// recordingStore notes every key written through it. Only the last
// operation on a key is kept.
type recordingStore struct {
	ledger.KVStore
	changes map[string]bool
}

func newRecordingStore(db ledger.KVStore) *recordingStore {
	return &recordingStore{KVStore: db, changes: make(map[string]bool)}
}

func (r *recordingStore) Set(key, value []byte) error {
	if err := r.KVStore.Set(key, value); err != nil {
		return err
	}
	r.changes[string(key)] = false
	return nil
}

func (r *recordingStore) Delete(key []byte) error {
	if err := r.KVStore.Delete(key); err != nil {
		return err
	}
	r.changes[string(key)] = true
	return nil
}

// NewBatch records the operations when the batch is written.
func (r *recordingStore) NewBatch() ledger.Batch {
	return &recordingBatch{Batch: r.KVStore.NewBatch(), parent: r}
}

type recordingBatch struct {
	ledger.Batch
	parent *recordingStore
	ops    []batchOp
}

type batchOp struct {
	key     string
	deleted bool
}

func (b *recordingBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, batchOp{key: string(key)})
	return b.Batch.Set(key, value)
}

func (b *recordingBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: string(key), deleted: true})
	return b.Batch.Delete(key)
}

func (b *recordingBatch) Write() error {
	if err := b.Batch.Write(); err != nil {
		return err
	}
	for _, op := range b.ops {
		b.parent.changes[op.key] = op.deleted
	}
	b.ops = nil
	return nil
}
