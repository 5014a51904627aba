package orm

import (
	"bytes"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Indexer calculates the secondary index value for a given model.
// Returning nil excludes the model from the index. All values produced
// by one indexer must have the same length.
type Indexer func(Model) ([]byte, error)

// index is a non unique secondary index. Every indexed entity is stored
// as a separate key built from the index value followed by the primary
// key, so lookups are prefix scans.
type index struct {
	name   string
	prefix []byte
	index  Indexer
	refs   Bucket
}

var _ ledger.QueryHandler = (*index)(nil)

func newIndex(name string, indexer Indexer, refs Bucket) *index {
	return &index{
		name:   name,
		prefix: []byte("_i." + name + ":"),
		index:  indexer,
		refs:   refs,
	}
}

func (i *index) entryKey(value, pk []byte) []byte {
	out := make([]byte, 0, len(i.prefix)+len(value)+len(pk))
	out = append(out, i.prefix...)
	out = append(out, value...)
	return append(out, pk...)
}

// Update moves the entry of the entity from the previous index value to
// the next one.
func (i *index) Update(db ledger.KVStore, pk []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrState, "update requires at least one model")
	}
	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = i.index(prev); err != nil {
			return err
		}
	}
	if next != nil {
		if nextVal, err = i.index(next); err != nil {
			return err
		}
	}
	if prevVal != nil && next != nil && bytes.Equal(prevVal, nextVal) {
		return nil
	}
	if prevVal != nil {
		if err := db.Delete(i.entryKey(prevVal, pk)); err != nil {
			return err
		}
	}
	if nextVal != nil {
		if err := db.Set(i.entryKey(nextVal, pk), pk); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the primary keys of all entities indexed under value.
func (i *index) Keys(db ledger.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	models, err := queryPrefix(db, i.entryKey(value, nil))
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(models))
	for n, m := range models {
		keys[n] = m.Value
	}
	return keys, nil
}

// Query returns all entities referenced under the queried index value.
func (i *index) Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error) {
	if mod != ledger.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	keys, err := i.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]ledger.Model, 0, len(keys))
	for _, k := range keys {
		raw, err := i.refs.Get(db, k)
		if err != nil {
			return nil, err
		}
		if raw != nil {
			res = append(res, ledger.Pair(i.refs.DBKey(k), raw))
		}
	}
	return res, nil
}
