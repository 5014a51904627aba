package system

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

const optKey = "system"

// GenesisAccount is used to parse the json from genesis file.
type GenesisAccount struct {
	Address  ledger.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
}

// Initializer fulfils the InitStater interface to load data from
// the genesis file
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

// FromGenesis stores the rent configuration and the initial lamport
// holders. Without a "conf.system" section the default rent parameters
// are used, fields missing from the section keep their default value.
func (Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	conf := DefaultConfiguration()
	switch err := gconf.InitConfig(db, opts, configPkg, &conf); {
	case errors.ErrNotFound.Is(err):
		def := DefaultConfiguration()
		if err := gconf.Save(db, configPkg, &def); err != nil {
			return errors.Wrap(err, "save default configuration")
		}
	case err != nil:
		return err
	}

	var state struct {
		Accounts []GenesisAccount `json:"accounts"`
	}
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrap(err, "read system genesis")
	}
	bucket := NewBucket()
	for i, acct := range state.Accounts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := bucket.Has(db, acct.Address); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "account %s", acct.Address)
		}
		a := &Account{Lamports: acct.Lamports, Owner: ProgramID}
		if err := bucket.Put(db, acct.Address, a); err != nil {
			return errors.Wrapf(err, "save account %s", acct.Address)
		}
	}
	return nil
}
