package sigs

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// NextNonce returns the next numeric nonce value that should be used during a
// transaction signing. Nonce counting starts with zero.
func NextNonce(db ledger.ReadOnlyKVStore, signer ledger.Address) (int64, error) {
	var u UserData
	switch err := NewBucket().One(db, signer, &u); {
	case err == nil:
		return u.Sequence, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "bucket get")
	}
}
