/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index and may possess secondary indexes.
* Easy queries for one and iteration.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a prefixed subspace of the DB holding raw values.
//
// This is a generic building block that should generally
// be embedded in a type-safe wrapper to ensure all data
// is the same type.
type Bucket struct {
	name   string
	prefix []byte
}

var _ ledger.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the bucket name.
func (b Bucket) Name() string {
	return b.name
}

// Register registers this Bucket for queries. You can define a name
// here for queries, which is different than the bucket name used to
// prefix the data
func (b Bucket) Register(name string, r ledger.QueryRouter) {
	if name == "" {
		name = b.name
	}
	r.Register("/"+name, b)
}

// Query handles queries from the QueryRouter
func (b Bucket) Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error) {
	switch mod {
	case ledger.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []ledger.Model{{Key: key, Value: value}}, nil
	case ledger.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// DBKey is the full key we store in the db, including prefix.
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get returns the raw value stored under key, nil if missing.
func (b Bucket) Get(db ledger.ReadOnlyKVStore, key []byte) ([]byte, error) {
	return db.Get(b.DBKey(key))
}

// Has returns true if a value is stored under key.
func (b Bucket) Has(db ledger.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Set writes the raw value under key.
func (b Bucket) Set(db ledger.KVStore, key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	return db.Set(b.DBKey(key), value)
}

// Delete removes the value stored under key.
func (b Bucket) Delete(db ledger.KVStore, key []byte) error {
	return db.Delete(b.DBKey(key))
}
