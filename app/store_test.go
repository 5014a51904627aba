package app

import (
	"context"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

func newTestStoreApp(t testing.TB, cs ledger.CommitKVStore) *StoreApp {
	t.Helper()
	qr := ledger.NewQueryRouter()
	orm.RegisterQuery(qr)
	return NewStoreApp("test", cs, qr, context.Background()).WithInit(dummyInit{})
}

func TestStoreAppLifecycle(t *testing.T) {
	app := newTestStoreApp(t, iavl.NewMemCommitStore())

	info := app.Info(abci.RequestInfo{})
	assert.Equal(t, "test", info.Data)
	assert.Equal(t, ledger.Version(), info.Version)
	assert.EqualValues(t, 0, info.LastBlockHeight)

	app.InitChain(abci.RequestInitChain{
		ChainId:       "lifecycle-chain",
		AppStateBytes: []byte(`{"dummy": "init"}`),
	})
	assert.Equal(t, "lifecycle-chain", app.GetChainID())
	assert.Equal(t, "lifecycle-chain", ledger.GetChainID(app.baseContext))

	// genesis state is not visible to queries before commit
	res := app.Query(abci.RequestQuery{Path: "/", Data: []byte(dummyKey)})
	require.Equal(t, uint32(errors.SuccessABCICode), res.Code, res.Log)
	var values ledger.ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	assert.Empty(t, values.Results)

	now := time.Now().UTC()
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: now}})
	height, _ := ledger.GetHeight(app.BlockContext())
	assert.EqualValues(t, 1, height)
	blockTime, ok := ledger.BlockTime(app.BlockContext())
	require.True(t, ok)
	assert.True(t, now.Equal(blockTime))
	app.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := app.Commit()
	assert.NotEmpty(t, commit.Data)

	res = app.Query(abci.RequestQuery{Path: "/", Data: []byte(dummyKey)})
	require.Equal(t, uint32(errors.SuccessABCICode), res.Code, res.Log)
	assert.EqualValues(t, 1, res.Height)
	require.NoError(t, values.Unmarshal(res.Value))
	assert.Equal(t, [][]byte{[]byte("init")}, values.Results)

	info = app.Info(abci.RequestInfo{})
	assert.EqualValues(t, 1, info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)
}

func TestStoreAppQueryErrors(t *testing.T) {
	app := newTestStoreApp(t, iavl.NewMemCommitStore())

	res := app.Query(abci.RequestQuery{Path: "/nothing"})
	code, _ := errors.ABCIInfo(errors.ErrNotFound, false)
	assert.Equal(t, code, res.Code)

	res = app.Query(abci.RequestQuery{Path: "/?range"})
	code, _ = errors.ABCIInfo(errors.ErrInput, false)
	assert.Equal(t, code, res.Code)

	res = app.Query(abci.RequestQuery{Path: "/", Height: 99})
	assert.Equal(t, code, res.Code)
}

func TestStoreAppRejectsBadGenesis(t *testing.T) {
	app := newTestStoreApp(t, iavl.NewMemCommitStore())

	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "empty-state"})
	})
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{ChainId: "x", AppStateBytes: []byte(`{}`)})
	})
	assert.Equal(t, "", app.GetChainID())
}

func TestStoreAppRestart(t *testing.T) {
	dir, err := ioutil.TempDir("", "ledger-app-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cs := iavl.NewCommitStore(dir, "restart")
	app := newTestStoreApp(t, cs)
	app.InitChain(abci.RequestInitChain{
		ChainId:       "restart-chain",
		AppStateBytes: []byte(`{"dummy": "persisted"}`),
	})
	app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1}})
	app.EndBlock(abci.RequestEndBlock{Height: 1})
	hash := app.Commit().Data
	cs.Close()

	cs = iavl.NewCommitStore(dir, "restart")
	defer cs.Close()
	app = newTestStoreApp(t, cs)
	assert.Equal(t, "restart-chain", app.GetChainID())
	height, _ := ledger.GetHeight(app.BlockContext())
	assert.EqualValues(t, 1, height)
	assert.Equal(t, hash, app.Info(abci.RequestInfo{}).LastBlockAppHash)

	// a restarted chain never loads its genesis again
	assert.Panics(t, func() {
		app.InitChain(abci.RequestInitChain{
			ChainId:       "restart-chain",
			AppStateBytes: []byte(`{"dummy": "again"}`),
		})
	})
}
