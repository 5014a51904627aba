package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/system"
)

const optKey = "token"

// GenesisMint declares a mint and its initial holders. Every holder gets
// an associated token account.
type GenesisMint struct {
	Address   ledger.Address   `json:"address"`
	Authority ledger.Address   `json:"authority"`
	Decimals  uint8            `json:"decimals"`
	Holders   []GenesisHolding `json:"holders"`
}

// GenesisHolding is the initial balance of a wallet.
type GenesisHolding struct {
	Wallet ledger.Address `json:"wallet"`
	Amount uint64         `json:"amount"`
}

// Initializer fulfils the InitStater interface to load data from
// the genesis file. It must run after the system initializer, rent
// deposits of genesis accounts are created out of thin air.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

// FromGenesis creates the declared mints and associated token accounts.
func (Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	var state struct {
		Mints []GenesisMint `json:"mints"`
	}
	if err := opts.ReadOptions(optKey, &state); err != nil {
		return errors.Wrap(err, "read token genesis")
	}

	sys := system.NewController(system.NewBucket())
	for _, gm := range state.Mints {
		if err := gm.Address.Validate(); err != nil {
			return errors.Wrap(err, "mint address")
		}
		m := Mint{MintAuthority: gm.Authority, Decimals: gm.Decimals, IsInitialized: true}
		for _, h := range gm.Holders {
			if err := h.Wallet.Validate(); err != nil {
				return errors.Wrapf(err, "holder of mint %s", gm.Address)
			}
			if m.Supply+h.Amount < m.Supply {
				return errors.Wrapf(errors.ErrOverflow, "supply of mint %s", gm.Address)
			}
			m.Supply += h.Amount
			addr, err := AssociatedAddress(h.Wallet, gm.Address)
			if err != nil {
				return err
			}
			a := Account{Mint: gm.Address, Owner: h.Wallet, Amount: h.Amount, State: StateInitialized}
			if err := genesisAccount(db, sys, addr, &a); err != nil {
				return errors.Wrapf(err, "holder %s", h.Wallet)
			}
		}
		if err := genesisAccount(db, sys, gm.Address, &m); err != nil {
			return errors.Wrapf(err, "mint %s", gm.Address)
		}
	}
	return nil
}

// genesisAccount stores the model as a rent exempt account of this
// program.
func genesisAccount(db ledger.KVStore, sys system.Controller, addr ledger.Address, m ledger.Marshaller) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	rent, err := sys.MinimumBalance(db, len(data))
	if err != nil {
		return err
	}
	bucket := system.NewBucket()
	if err := bucket.Has(db, addr); err == nil {
		return errors.Wrap(errors.ErrDuplicate, "account exists")
	}
	return bucket.Put(db, addr, &system.Account{Lamports: rent, Owner: ProgramID, Data: data})
}
