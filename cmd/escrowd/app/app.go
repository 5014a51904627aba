/*
Package app links together all the various components
to construct the escrowd app.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
	"github.com/iov-one/ledger/x/utils"
)

// Authenticator returns the typical authentication,
// public key signatures plus program derived signers
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, x.ProgramAuth{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewKeyTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	)
}

// Router returns a router dispatching to the system, token and escrow
// handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	sys := system.NewController(system.NewBucket())
	tokens := token.NewController(authFn, sys)
	system.RegisterRoutes(r, authFn, sys)
	token.RegisterRoutes(r, authFn, tokens)
	escrow.RegisterRoutes(r, authFn, escrow.NewController(sys, tokens, escrow.NewClosedBucket()))
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/accounts", "/escrows", "/escrows/closed",
// "/nonces" and "/"
func QueryRouter() ledger.QueryRouter {
	r := ledger.NewQueryRouter()
	r.RegisterAll(
		system.RegisterQuery,
		escrow.RegisterQuery,
		sigs.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() ledger.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Initializers returns the genesis loaders of every extension. System
// runs first so the rent configuration exists before token accounts
// are funded.
func Initializers() ledger.Initializer {
	return app.ChainInitializers(
		system.Initializer{},
		token.Initializer{},
	)
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h ledger.Handler,
	tx ledger.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (ledger.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", path)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
