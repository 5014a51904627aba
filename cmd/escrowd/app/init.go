package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/system"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// devLamports is the balance of the single account created by
// GenInitOptions.
const devLamports = 1000000000000

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// The account address can be given as the first argument. If missing,
// a new key is generated and printed out.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr ledger.Address
	if len(args) > 0 {
		var err error
		addr, err = ledger.ParseAddress(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "account address")
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the keys
		bz, keys, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		addr = bz
		fmt.Println(keys)
	}

	conf := system.DefaultConfiguration()
	conf.Owner = addr
	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"system": conf,
		},
		"system": map[string]interface{}{
			"accounts": []system.GenesisAccount{
				{Address: addr, Lamports: devLamports},
			},
		},
		"token": map[string]interface{}{
			"mints": []interface{}{},
		},
	}
	return json.MarshalIndent(state, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "escrow.db")
	}

	application, err := Application("escrowd", Stack(), TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers())

	// set the logger and return
	application.WithLogger(logger)
	return application, nil
}

// InlineApp will take a previously prepared CommitStore and return a
// complete Application.
func InlineApp(kv ledger.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	store := app.NewStoreApp("escrowd", kv, QueryRouter(), context.Background())
	base := app.NewBaseApp(store, TxDecoder, Stack(), debug)
	base.WithInit(Initializers())
	base.WithLogger(logger)
	return base
}

type output struct {
	Address ledger.Address    `json:"address"`
	Pubkey  crypto.PublicKey  `json:"pub_key"`
	Secret  crypto.PrivateKey `json:"secret"`
}

// GenerateKey returns the address of a new key pair, along with a json
// representation of the keys. You can fund this address and import the
// keys in a client to use them.
func GenerateKey() (ledger.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Address: addr, Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(err, "marshal keys")
	}
	return addr, string(keys), nil
}
