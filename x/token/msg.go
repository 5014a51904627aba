package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	pathCreateAssociatedMsg = "token/create_associated"
	pathTransferMsg         = "token/transfer"
	pathMintToMsg           = "token/mint_to"
)

// CreateAssociatedMsg opens the associated token account of Wallet for
// Mint. The rent is paid by Payer, who must sign.
type CreateAssociatedMsg struct {
	Payer  ledger.Address `json:"payer"`
	Wallet ledger.Address `json:"wallet"`
	Mint   ledger.Address `json:"mint"`
}

var _ ledger.Msg = (*CreateAssociatedMsg)(nil)

func (CreateAssociatedMsg) Path() string {
	return pathCreateAssociatedMsg
}

func (m *CreateAssociatedMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Wrap(err, "payer")
	}
	if err := m.Wallet.Validate(); err != nil {
		return errors.Wrap(err, "wallet")
	}
	if err := m.Mint.Validate(); err != nil {
		return errors.Wrap(err, "mint")
	}
	return nil
}

// TransferMsg moves Amount tokens from Src to Dest. Authority must own
// Src and sign.
type TransferMsg struct {
	Src       ledger.Address `json:"src"`
	Dest      ledger.Address `json:"dest"`
	Authority ledger.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
}

var _ ledger.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Validate() error {
	if err := m.Src.Validate(); err != nil {
		return errors.Wrap(err, "src")
	}
	if err := m.Dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if err := m.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	return nil
}

// MintToMsg issues Amount new tokens of Mint into Dest. Authority must be
// the mint authority and sign.
type MintToMsg struct {
	Mint      ledger.Address `json:"mint"`
	Dest      ledger.Address `json:"dest"`
	Authority ledger.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
}

var _ ledger.Msg = (*MintToMsg)(nil)

func (MintToMsg) Path() string {
	return pathMintToMsg
}

func (m *MintToMsg) Validate() error {
	if err := m.Mint.Validate(); err != nil {
		return errors.Wrap(err, "mint")
	}
	if err := m.Dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if err := m.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	return nil
}
