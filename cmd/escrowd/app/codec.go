package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
	amino "github.com/tendermint/go-amino"
)

// Codec serializes transactions and every message this application
// understands.
var Codec = amino.NewCodec()

func init() {
	RegisterCodec(Codec)
}

// RegisterCodec registers the Msg interface together with every supported
// message under its route path.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterInterface((*ledger.Msg)(nil), nil)
	cdc.RegisterConcrete(&system.SendMsg{}, "system/send", nil)
	cdc.RegisterConcrete(&system.UpdateConfigurationMsg{}, "system/update_configuration", nil)
	cdc.RegisterConcrete(&token.CreateAssociatedMsg{}, "token/create_associated", nil)
	cdc.RegisterConcrete(&token.TransferMsg{}, "token/transfer", nil)
	cdc.RegisterConcrete(&token.MintToMsg{}, "token/mint_to", nil)
	cdc.RegisterConcrete(&escrow.MakeMsg{}, "escrow/make", nil)
	cdc.RegisterConcrete(&escrow.TakeMsg{}, "escrow/take", nil)
	cdc.RegisterConcrete(&escrow.RefundMsg{}, "escrow/refund", nil)
}

// Tx is the transaction format of the escrow chain: a single message
// and the signatures authorizing it.
type Tx struct {
	Msg        ledger.Msg           `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

// make sure tx fulfills all interfaces
var _ ledger.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps a message into an unsigned transaction.
func NewTx(msg ledger.Msg) *Tx {
	return &Tx{Msg: msg}
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (ledger.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message carried by the transaction.
func (tx *Tx) GetMsg() (ledger.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "transaction without a message")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures attached to the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	signatures := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	// reset the signatures after calculating the bytes
	tx.Signatures = signatures
	return bz, err
}

// Marshal encodes the transaction with amino.
func (tx *Tx) Marshal() ([]byte, error) {
	bz, err := Codec.MarshalBinaryBare(tx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return bz, nil
}

// Unmarshal decodes an amino encoded transaction.
func (tx *Tx) Unmarshal(bz []byte) error {
	if len(bz) == 0 {
		return errors.Wrap(errors.ErrEmpty, "transaction")
	}
	if err := Codec.UnmarshalBinaryBare(bz, tx); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// Sign appends a signature of the signer for the given chain and nonce.
func (tx *Tx) Sign(signer sigs.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
