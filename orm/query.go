package orm

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// RegisterQuery registers raw store access under "/". Keys are full
// database keys, including the bucket prefix.
func RegisterQuery(qr ledger.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

func (rawQuery) Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error) {
	switch mod {
	case ledger.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil || value == nil {
			return nil, err
		}
		return []ledger.Model{ledger.Pair(data, value)}, nil
	case ledger.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// prefixRangeEnd returns the first key after all keys with the given
// prefix, or nil if there is none.
func prefixRangeEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

func queryPrefix(db ledger.ReadOnlyKVStore, prefix []byte) ([]ledger.Model, error) {
	itr, err := db.Iterator(prefix, prefixRangeEnd(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr), nil
}

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr ledger.Iterator) []ledger.Model {
	defer itr.Close()

	var res []ledger.Model
	for ; itr.Valid(); itr.Next() {
		res = append(res, ledger.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		})
	}
	return res
}
