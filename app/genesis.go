package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID  string         `json:"chain_id"`
	AppState ledger.Options `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	bytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(err, "reading genesis file")
	}

	err = json.Unmarshal(bytes, &gen)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...ledger.Initializer) ledger.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []ledger.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts ledger.Options, kv ledger.KVStore) error {
	for _, i := range c.inits {
		err := i.FromGenesis(opts, kv)
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadGenesis initializes a fresh store from the genesis file at given
// path, without going through the abci InitChain handshake.
func (s *StoreApp) LoadGenesis(filePath string) error {
	gen, err := loadGenesis(filePath)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(gen.AppState)
	if err != nil {
		return errors.Wrap(err, "app state")
	}
	return s.parseAppState(raw, gen.ChainID, s.initializer)
}
