package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/ledger"
	ledgerapp "github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

// localConn answers ABCI queries from an in process application instead
// of a remote node.
type localConn struct {
	client.Client
	app ledgerapp.Querier
	err error
}

func (c *localConn) ABCIQueryWithOptions(path string, data cmn.HexBytes, opts client.ABCIQueryOptions) (*ctypes.ResultABCIQuery, error) {
	if c.err != nil {
		return nil, c.err
	}
	resp := c.app.Query(abci.RequestQuery{Path: path, Data: data, Height: opts.Height, Prove: opts.Prove})
	return &ctypes.ResultABCIQuery{Response: resp}, nil
}

func newLocalClient(t *testing.T, users map[string]int64) *tmClient {
	t.Helper()
	store := ledgerapp.NewStoreApp("escrowd", iavl.NewMemCommitStore(), app.QueryRouter(), context.Background())
	bucket := sigs.NewBucket()
	for _, u := range users {
		key := ledgertest.NewKey()
		user := &sigs.UserData{Pubkey: key.PublicKey(), Sequence: u}
		if err := bucket.Put(store.DeliverStore(), key.Address(), user); err != nil {
			t.Fatalf("cannot save user: %s", err)
		}
	}
	store.Commit()
	return &tmClient{conn: &localConn{app: store}}
}

func TestClientNextNonce(t *testing.T) {
	store := ledgerapp.NewStoreApp("escrowd", iavl.NewMemCommitStore(), app.QueryRouter(), context.Background())
	signer := ledgertest.NewKey()
	user := &sigs.UserData{Pubkey: signer.PublicKey(), Sequence: 7}
	assert.Nil(t, sigs.NewBucket().Put(store.DeliverStore(), signer.Address(), user))
	store.Commit()
	c := &tmClient{conn: &localConn{app: store}}

	seq, err := c.NextNonce(signer.Address())
	assert.Nil(t, err)
	assert.Equal(t, int64(7), seq)

	seq, err = c.NextNonce(ledgertest.NewAddress())
	assert.Nil(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestClientQueryModels(t *testing.T) {
	c := newLocalClient(t, map[string]int64{"alice": 1, "bob": 4})

	models, err := c.QueryModels("/nonces?"+ledger.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(models))

	_, err = c.QueryModels("/vaults", nil)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestClientNodeUnreachable(t *testing.T) {
	c := &tmClient{conn: &localConn{err: fmt.Errorf("connection refused")}}

	_, err := c.NextNonce(ledgertest.NewAddress())
	assert.IsErr(t, errors.ErrNetwork, err)

	_, err = c.QueryModels("/nonces", nil)
	assert.IsErr(t, errors.ErrNetwork, err)
}
