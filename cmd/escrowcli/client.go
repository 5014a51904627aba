package main

import (
	"fmt"

	"github.com/iov-one/ledger"
	ledgerapp "github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

// tmClient talks to a tendermint node running the escrow application.
type tmClient struct {
	conn client.Client
}

func newClient(remote string) *tmClient {
	return &tmClient{conn: client.NewHTTP(remote, "/websocket")}
}

// ChainID returns the chain ID declared in the node genesis.
func (c *tmClient) ChainID() (string, error) {
	gen, err := c.conn.Genesis()
	if err != nil {
		return "", fmt.Errorf("cannot fetch genesis: %s", err)
	}
	return gen.Genesis.ChainID, nil
}

// Query mirrors the abci query interface, so the node state can be read
// through an app.ABCIStore.
func (c *tmClient) Query(req abci.RequestQuery) abci.ResponseQuery {
	opts := client.ABCIQueryOptions{Height: req.Height, Prove: req.Prove}
	res, err := c.conn.ABCIQueryWithOptions(req.Path, req.Data, opts)
	if err != nil {
		code, log := errors.ABCIInfo(errors.Wrap(errors.ErrNetwork, err.Error()), false)
		return abci.ResponseQuery{Code: code, Log: log}
	}
	return res.Response
}

// QueryModels runs an ABCI query and returns the decoded models. An empty
// result is not an error.
func (c *tmClient) QueryModels(path string, data []byte) ([]ledger.Model, error) {
	resp := c.Query(abci.RequestQuery{Path: path, Data: data})
	if resp.IsErr() {
		return nil, errors.ABCIError(resp.Code, resp.Log)
	}
	var keys, values ledger.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return nil, errors.Wrap(err, "keys")
	}
	if err := values.Unmarshal(resp.Value); err != nil {
		return nil, errors.Wrap(err, "values")
	}
	return ledger.JoinResults(&keys, &values)
}

// NextNonce returns the sequence the next signature of addr must use.
func (c *tmClient) NextNonce(addr ledger.Address) (int64, error) {
	return sigs.NextNonce(ledgerapp.NewABCIStore(c), addr)
}

// Broadcast submits the transaction and waits until it is included in a
// block. Failing check or deliver results are returned as errors.
func (c *tmClient) Broadcast(tx *app.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	res, err := c.conn.BroadcastTxCommit(raw)
	if err != nil {
		return nil, fmt.Errorf("broadcast: %s", err)
	}
	if res.CheckTx.IsErr() {
		return res, errors.Wrap(errors.ABCIError(res.CheckTx.Code, res.CheckTx.Log), "check")
	}
	if res.DeliverTx.IsErr() {
		return res, errors.Wrap(errors.ABCIError(res.DeliverTx.Code, res.DeliverTx.Log), "deliver")
	}
	return res, nil
}
