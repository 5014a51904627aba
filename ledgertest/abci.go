package ledgertest

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Tester is implemented by both *testing.T and *testing.B. Use it instead of
// the pointer type to allow notation to accept both objects.
type Tester interface {
	Helper()
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// Runner provides a translation layer between an ABCI interface and a
// ledger application. It takes care of serializing messages and creating
// blocks.
type Runner struct {
	chainID string
	height  int64
	t       Tester
	app     abci.Application
}

// NewRunner creates a Runner instance that can be used to process
// deliver and check transaction requests using the ledger API. Setup
// failures end the test instantly, transaction failures are returned.
func NewRunner(t Tester, app abci.Application, chainID string) *Runner {
	return &Runner{
		chainID: chainID,
		height:  0,
		t:       t,
		app:     app,
	}
}

// App is the minimal interface required by the Runner to be able
// to connect ABCI and ledger APIs together.
type App interface {
	DeliverTx(ledger.Tx) error
	CheckTx(ledger.Tx) error
	// we also allow standard queries... wrap into a bucket for ease of use
	ledger.ReadOnlyKVStore
}

var _ App = (*Runner)(nil)

// Height returns the height of the last created block.
func (w *Runner) Height() int64 {
	return w.height
}

// InitChain serialize to JSON given genesis and loads it. Loading a genesis is
// causing a block creation.
func (w *Runner) InitChain(genesis interface{}) {
	w.t.Helper()

	raw, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		w.t.Fatalf("cannot JSON serialize genesis: %s", err)
	}

	// Load the genesis in a separate block.
	changed := w.InBlock(func(App) error {
		w.app.InitChain(abci.RequestInitChain{
			Time:          time.Now(),
			ChainId:       w.chainID,
			AppStateBytes: raw,
		})
		return nil
	})

	if !changed {
		w.t.Fatalf("genesis did not change the state")
	}
}

// CheckTx translates given transaction into ABCI interface and executes.
func (w *Runner) CheckTx(tx ledger.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction")
	}
	resp := w.app.CheckTx(raw)
	if resp.Code != errors.SuccessABCICode {
		return errors.ABCIError(resp.Code, resp.Log)
	}
	return nil
}

// DeliverTx translates given transaction into ABCI interface and executes.
// The returned error carries the ABCI code so it can be compared with
// registered errors.
func (w *Runner) DeliverTx(tx ledger.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction")
	}
	resp := w.app.DeliverTx(raw)
	_, err = ledger.ParseDeliverOrError(resp)
	return err
}

// InBlock begins a block and runs given function. All transactions executed
// withing given function are part of newly created block. Upon success the
// block is finished and changes commited.
// InBlock returns true if the application state was modified.
//
// Any failure is ending the test instantly.
func (w *Runner) InBlock(executeTx func(App) error) bool {
	w.t.Helper()

	w.height++

	initialHash := w.app.Info(abci.RequestInfo{}).LastBlockAppHash

	// BeginBlock will panic on error.
	w.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{
			ChainID: w.chainID,
			Height:  w.height,
			Time:    time.Now(),
		},
	})

	if err := executeTx(w); err != nil {
		w.t.Fatalf("operation failed with %+v", err)
	}

	w.app.EndBlock(abci.RequestEndBlock{
		Height: w.height,
	})

	// Commit data contains the new app hash. It differs from the initial
	// hash only if the state was modified.
	finalHash := w.app.Commit().Data
	return !bytes.Equal(initialHash, finalHash)
}

var _ ledger.ReadOnlyKVStore = (*Runner)(nil)

// Get returns the committed value of a raw store key.
func (w *Runner) Get(key []byte) ([]byte, error) {
	query := w.app.Query(abci.RequestQuery{
		Path: "/",
		Data: key,
	})
	if query.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(query.Code, query.Log)
	}
	var value ledger.ResultSet
	if err := value.Unmarshal(query.Value); err != nil {
		return nil, errors.Wrap(err, "cannot parse values")
	}
	if len(value.Results) == 0 {
		return nil, nil
	}
	return value.Results[0], nil
}

func (w *Runner) Has(key []byte) (bool, error) {
	v, err := w.Get(key)
	return len(v) > 0, err
}

// Iterator only supports listing the entire store.
func (w *Runner) Iterator(start, end []byte) (ledger.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrHuman, "iterator only implemented for entire range")
	}

	query := w.app.Query(abci.RequestQuery{
		Path: "/?prefix",
		Data: nil,
	})
	if query.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(query.Code, query.Log)
	}
	var k, v ledger.ResultSet
	if err := k.Unmarshal(query.Key); err != nil {
		return nil, errors.Wrap(err, "cannot parse keys")
	}
	if err := v.Unmarshal(query.Value); err != nil {
		return nil, errors.Wrap(err, "cannot parse values")
	}
	models, err := ledger.JoinResults(&k, &v)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

func (w *Runner) ReverseIterator(start, end []byte) (ledger.Iterator, error) {
	return nil, errors.Wrap(errors.ErrHuman, "reverse iterator not supported")
}
