package orm

import (
	"reflect"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	ledger.Persistent
	Validate() error
}

// ModelBucket stores models of a single type under their primary key
// and keeps its secondary indexes up to date.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db ledger.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists,
	// ErrNotFound otherwise.
	Has(db ledger.ReadOnlyKVStore, key []byte) error

	// ByIndex returns the primary keys of all entities indexed under
	// given value by the named index.
	ByIndex(db ledger.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error)

	// Put saves given model in the database.
	Put(db ledger.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db ledger.KVStore, key []byte) error

	// Register registers the bucket and all its indexes for queries.
	Register(name string, r ledger.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name.
// All entities stored in the bucket are indexed using value returned by
// the indexer function.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic("index " + name + " registered twice")
		}
		mb.indexes[name] = newIndex(mb.b.name+"_"+name, indexer, mb.b)
	}
}

// NewModelBucket returns a ModelBucket instance storing models of the
// same type as model.
func NewModelBucket(name string, model Model, opts ...ModelBucketOption) ModelBucket {
	tp := reflect.TypeOf(model)
	if tp.Kind() != reflect.Ptr {
		panic("model must be a pointer")
	}
	mb := &modelBucket{
		b:       NewBucket(name),
		model:   tp.Elem(),
		indexes: make(map[string]*index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	b       Bucket
	model   reflect.Type
	indexes map[string]*index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) newModel() Model {
	return reflect.New(mb.model).Interface().(Model)
}

func (mb *modelBucket) One(db ledger.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := mb.b.Get(db, key)
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if !reflect.TypeOf(dest).AssignableTo(reflect.PtrTo(mb.model)) {
		return errors.Wrapf(errors.ErrType, "%s cannot be represented as %T", mb.model, dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db ledger.ReadOnlyKVStore, key []byte) error {
	ok, err := mb.b.Has(db, key)
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "no such key")
	}
	return nil
}

func (mb *modelBucket) ByIndex(db ledger.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "unknown index: %s", indexName)
	}
	return idx.Keys(db, value)
}

func (mb *modelBucket) Put(db ledger.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.b.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize model")
	}
	if err := mb.updateIndexes(db, key, m); err != nil {
		return err
	}
	if err := mb.b.Set(db, key, raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db ledger.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if err := mb.updateIndexes(db, key, nil); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

// updateIndexes reindexes the entity stored under key. A nil next model
// means the entity is being removed.
func (mb *modelBucket) updateIndexes(db ledger.KVStore, key []byte, next Model) error {
	if len(mb.indexes) == 0 {
		return nil
	}
	var prev Model
	switch raw, err := mb.b.Get(db, key); {
	case err != nil:
		return errors.Wrap(err, "cannot read from the database")
	case raw != nil:
		prev = mb.newModel()
		if err := prev.Unmarshal(raw); err != nil {
			return errors.Wrap(err, "cannot unmarshal previous model")
		}
	}
	for _, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, next); err != nil {
			return errors.Wrapf(err, "cannot update %s index", idx.name)
		}
	}
	return nil
}

func (mb *modelBucket) Register(name string, r ledger.QueryRouter) {
	if name == "" {
		name = mb.b.name
	}
	mb.b.Register(name, r)
	for iname, idx := range mb.indexes {
		r.Register("/"+name+"/"+iname, idx)
	}
}
