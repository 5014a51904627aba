package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/system"
)

// openQuery serves escrow records straight from the accounts owned by
// the escrow program. Keys are escrow addresses and values the encoded
// escrow data.
type openQuery struct {
	accounts orm.Bucket
}

var _ ledger.QueryHandler = openQuery{}

func (q openQuery) Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error) {
	models, err := q.accounts.Query(db, mod, data)
	if err != nil {
		return nil, err
	}
	prefix := len(q.accounts.DBKey(nil))
	res := make([]ledger.Model, 0, len(models))
	for _, m := range models {
		var acc system.Account
		if err := acc.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrap(err, "account")
		}
		if !acc.Owner.Equals(ProgramID) {
			continue
		}
		res = append(res, ledger.Pair(m.Key[prefix:], acc.Data))
	}
	return res, nil
}
