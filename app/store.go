package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed
// to perform queries and handshakes.
//
// It should be embedded in another struct for CheckTx,
// DeliverTx and initializing state from the genesis.
// Errors on ABCI steps that take no user input (Info, InitChain,
// BeginBlock, EndBlock and Commit) are handled as panics.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from abci.Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer ledger.Initializer

	// How to handle queries
	queryRouter ledger.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in parseAppState
	chainID string

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext context.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, time), reset on BeginBlock
	blockContext context.Context

	// mu serializes every access to the check and deliver caches
	mu *sync.Mutex
}

// NewStoreApp initializes this app into a ready state with some defaults
//
// panics if unable to properly load the state from the given store
func NewStoreApp(name string, store ledger.CommitKVStore,
	queryRouter ledger.QueryRouter, baseContext context.Context) *StoreApp {
	s := &StoreApp{
		name: name,
		// note: panics if trouble initializing from store
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
		mu:          &sync.Mutex{},
	}
	s = s.WithLogger(log.NewNopLogger())

	// load the chainID from the db
	s.chainID = mustLoadChainID(s.DeliverStore())
	if s.chainID != "" {
		s.baseContext = ledger.WithChainID(s.baseContext, s.chainID)
	}

	// get the most recent height
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = ledger.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init ledger.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// parseAppState is called from InitChain, the first time the chain
// starts, and not on restarts.
func (s *StoreApp) parseAppState(data []byte, chainID string, init ledger.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "appState previously loaded for chain: %s", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis.json, please initialize application before launching the blockchain")
	}

	var appState ledger.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	if err := s.storeChainID(chainID); err != nil {
		return err
	}
	if init == nil {
		return errors.Wrap(errors.ErrState, "initializer not set")
	}
	return init.FromGenesis(appState, s.DeliverStore())
}

// store chainID and update context
func (s *StoreApp) storeChainID(chainID string) error {
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = ledger.WithChainID(s.baseContext, s.chainID)
	return nil
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
//
// also sets baseContext logger
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = ledger.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use
func (s *StoreApp) BlockContext() context.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() ledger.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() ledger.CacheableKVStore {
	return s.store.CheckStore()
}

//----------------------- ABCI ---------------------

// Info implements abci.Application. It returns the height and hash,
// as well as the abci name and version.
//
// The height is the block that holds the transactions, not the apphash itself.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}

	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          ledger.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption - ABCI
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

/*
Query gets data from the app store.
A query request has the following elements:
* Path - the type of query
* Data - what to query, interpreted based on Path
* Height - the block height to query (if 0 most recent)

Path may be "/", "/<bucket>", or "/<bucket>/<index>"
It may be followed by "?prefix" to make a prefix query.

Key and Value in Results are always serialized ResultSet
objects, able to support 0 to N values. They must be the
same size. This makes things a little more difficult for
simple queries, but provides a consistent interface.
*/
func (s *StoreApp) Query(reqQuery abci.RequestQuery) abci.ResponseQuery {
	// find the handler
	path, mod := splitPath(reqQuery.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		code, _ := errors.ABCIInfo(errors.ErrNotFound, false)
		return abci.ResponseQuery{
			Code: code,
			Log:  fmt.Sprintf("unexpected query path: %v", reqQuery.Path),
		}
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	if reqQuery.Height != 0 && reqQuery.Height != info.Version {
		return queryError(errors.Wrapf(errors.ErrInput,
			"historical queries not supported: %d", reqQuery.Height))
	}

	// queries only ever see committed state
	db := s.store.committed.CacheWrap()
	defer db.Discard()

	models, err := qh.Query(db, mod, reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	res := abci.ResponseQuery{Height: info.Version}
	res.Key, err = ledger.ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	res.Value, err = ledger.ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	return res
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{
		Log:  log,
		Code: code,
	}
}

// Commit implements abci.Application
func (s *StoreApp) Commit() (res abci.ResponseCommit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commitID, err := s.store.Commit()
	if err != nil {
		// Read comment on type header
		panic(err)
	}

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements ABCI
func (s *StoreApp) InitChain(req abci.RequestInitChain) (res abci.ResponseInitChain) {
	err := s.parseAppState(req.AppStateBytes, req.ChainId, s.initializer)
	if err != nil {
		// Read comment on type header
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock implements ABCI
// Sets up blockContext
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) (res abci.ResponseBeginBlock) {
	ctx := ledger.WithHeight(s.baseContext, req.Header.GetHeight())
	ctx = ledger.WithBlockTime(ctx, req.Header.GetTime())
	s.blockContext = ctx
	return
}

// EndBlock - ABCI
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) (res abci.ResponseEndBlock) {
	return
}
