package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx, CheckTx, and BeginBlock
// handlers to the storage and query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder ledger.TxDecoder
	handler ledger.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder ledger.TxDecoder,
	handler ledger.Handler,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return ledger.DeliverTxError(err, b.debug)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := ledger.WithLogInfo(b.blockContext,
		"call", "deliver_tx",
		"path", ledger.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.store.deliver, tx)
	return ledger.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return ledger.CheckTxError(err, b.debug)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := ledger.WithLogInfo(b.blockContext,
		"call", "check_tx",
		"path", ledger.GetPath(tx))

	res, err := b.handler.Check(ctx, b.store.check, tx)
	return ledger.CheckOrError(res, err, b.debug)
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx ledger.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
