package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Querier is the part of an abci.Application that serves state queries.
// Both a local application and a remote node client implement it.
type Querier interface {
	Query(abci.RequestQuery) abci.ResponseQuery
}

// ABCIStore exposes the ledger abci.Query interface as a ReadonlyKVStore
type ABCIStore struct {
	app Querier
}

var _ ledger.ReadOnlyKVStore = (*ABCIStore)(nil)

// NewABCIStore wraps a querier so that the committed state behind it can
// be read with buckets.
func NewABCIStore(app Querier) *ABCIStore {
	return &ABCIStore{app: app}
}

// Get will query for exactly one value over the abci store.
// This can be wrapped with a bucket to reuse key/index/parse logic
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	query := a.app.Query(abci.RequestQuery{
		Path: "/",
		Data: key,
	})
	if query.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(query.Code, query.Log)
	}
	var value ledger.ResultSet
	if err := value.Unmarshal(query.Value); err != nil {
		return nil, errors.Wrap(err, "unmarshal result set")
	}
	switch len(value.Results) {
	case 0:
		return nil, nil
	case 1:
		return value.Results[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "expected one result, got %d", len(value.Results))
	}
}

// Has returns true if the given key in in the abci app store
func (a *ABCIStore) Has(key []byte) (bool, error) {
	v, err := a.Get(key)
	if err != nil {
		return false, err
	}
	return len(v) > 0, nil
}

// Iterator attempts to do a range iteration over the store,
// We only support prefix queries in the abci server for now.
// This client only supports listing everything...
func (a *ABCIStore) Iterator(start, end []byte) (ledger.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrInput, "iterator only implemented for entire range")
	}
	models, err := a.listAll()
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

// ReverseIterator lists the whole store in descending key order.
func (a *ABCIStore) ReverseIterator(start, end []byte) (ledger.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrInput, "iterator only implemented for entire range")
	}
	models, err := a.listAll()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

func (a *ABCIStore) listAll() ([]ledger.Model, error) {
	query := a.app.Query(abci.RequestQuery{
		Path: "/?prefix",
		Data: nil,
	})
	if query.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(query.Code, query.Log)
	}
	return toModels(query.Key, query.Value)
}

func toModels(keys, values []byte) ([]ledger.Model, error) {
	var k, v ledger.ResultSet
	if err := k.Unmarshal(keys); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal keys")
	}
	if err := v.Unmarshal(values); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal values")
	}
	return ledger.JoinResults(&k, &v)
}
