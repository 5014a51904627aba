package sigs

import (
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the sigs.Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Msg.
	// Signatures are never part of those bytes.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Msg.
	GetSignatures() []*StdSignature
}

// StdSignature is a single signature over a transaction together with
// the key and the sequence it was created for.
type StdSignature struct {
	Pubkey    crypto.PublicKey `json:"pubkey"`
	Signature []byte           `json:"signature"`
	Sequence  int64            `json:"sequence"`
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if len(s.Pubkey) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if err := s.Pubkey.Validate(); err != nil {
		return errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	if len(s.Signature) == 0 {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
