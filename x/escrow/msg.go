package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	pathMakeMsg   = "escrow/make"
	pathTakeMsg   = "escrow/take"
	pathRefundMsg = "escrow/refund"
)

// MakeMsg opens an escrow offering Deposit of MintA for Receive of MintB.
// Escrow and Vault must be the addresses derived from Maker and Seed.
type MakeMsg struct {
	Maker     ledger.Address `json:"maker"`
	Seed      uint64         `json:"seed"`
	Receive   uint64         `json:"receive"`
	Deposit   uint64         `json:"deposit"`
	MintA     ledger.Address `json:"mint_a"`
	MintB     ledger.Address `json:"mint_b"`
	MakerAtaA ledger.Address `json:"maker_ata_a"`
	Escrow    ledger.Address `json:"escrow"`
	Vault     ledger.Address `json:"vault"`
}

var _ ledger.Msg = (*MakeMsg)(nil)

func (MakeMsg) Path() string {
	return pathMakeMsg
}

func (m *MakeMsg) Validate() error {
	if err := validateAddresses([]namedAddress{
		{"maker", m.Maker},
		{"mint_a", m.MintA},
		{"mint_b", m.MintB},
		{"maker_ata_a", m.MakerAtaA},
		{"escrow", m.Escrow},
		{"vault", m.Vault},
	}); err != nil {
		return err
	}
	if m.Receive == 0 {
		return errors.Wrap(errors.ErrAmount, "receive must be positive")
	}
	if m.Deposit == 0 {
		return errors.Wrap(errors.ErrAmount, "deposit must be positive")
	}
	if m.MintA.Equals(m.MintB) {
		return errors.Wrap(errors.ErrInput, "cannot swap a token for itself")
	}
	return nil
}

// TakeMsg completes the escrow: Taker pays the requested amount from
// TakerAtaB to MakerAtaB and receives the vault into TakerAtaA.
type TakeMsg struct {
	Taker     ledger.Address `json:"taker"`
	Maker     ledger.Address `json:"maker"`
	Escrow    ledger.Address `json:"escrow"`
	Vault     ledger.Address `json:"vault"`
	TakerAtaA ledger.Address `json:"taker_ata_a"`
	TakerAtaB ledger.Address `json:"taker_ata_b"`
	MakerAtaB ledger.Address `json:"maker_ata_b"`
}

var _ ledger.Msg = (*TakeMsg)(nil)

func (TakeMsg) Path() string {
	return pathTakeMsg
}

func (m *TakeMsg) Validate() error {
	return validateAddresses([]namedAddress{
		{"taker", m.Taker},
		{"maker", m.Maker},
		{"escrow", m.Escrow},
		{"vault", m.Vault},
		{"taker_ata_a", m.TakerAtaA},
		{"taker_ata_b", m.TakerAtaB},
		{"maker_ata_b", m.MakerAtaB},
	})
}

// RefundMsg cancels the escrow and returns the deposit to MakerAtaA.
type RefundMsg struct {
	Maker     ledger.Address `json:"maker"`
	MakerAtaA ledger.Address `json:"maker_ata_a"`
	Escrow    ledger.Address `json:"escrow"`
	Vault     ledger.Address `json:"vault"`
}

var _ ledger.Msg = (*RefundMsg)(nil)

func (RefundMsg) Path() string {
	return pathRefundMsg
}

func (m *RefundMsg) Validate() error {
	return validateAddresses([]namedAddress{
		{"maker", m.Maker},
		{"maker_ata_a", m.MakerAtaA},
		{"escrow", m.Escrow},
		{"vault", m.Vault},
	})
}

type namedAddress struct {
	name string
	addr ledger.Address
}

func validateAddresses(addrs []namedAddress) error {
	for _, a := range addrs {
		if err := a.addr.Validate(); err != nil {
			return errors.Wrap(err, a.name)
		}
	}
	return nil
}
