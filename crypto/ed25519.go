/*
Package crypto holds the ed25519 keys used to sign ledger transactions.

A ledger address of an external account is the raw ed25519 public key,
so there is no hashing step between a signer and its address.
*/
package crypto

import (
	"encoding/hex"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

// SignatureSize is the length of a signature in bytes.
const SignatureSize = ed25519.SignatureSize

// PublicKey is an ed25519 public key.
type PublicKey []byte

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// Address returns the ledger address controlled by this key.
func (p PublicKey) Address() ledger.Address {
	return ledger.Address(p).Clone()
}

// Validate returns an error if the public key has not a valid length.
func (p PublicKey) Validate() error {
	if len(p) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "invalid public key length: %d", len(p))
	}
	return nil
}

// PrivateKey is an ed25519 private key, including its public part.
type PrivateKey []byte

// Sign returns a matching signature for this private key
func (p PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key length: %d", len(p))
	}
	return ed25519.Sign(ed25519.PrivateKey(p), message), nil
}

// PublicKey returns the corresponding PublicKey
func (p PrivateKey) PublicKey() PublicKey {
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}

// Address returns the ledger address controlled by this key.
func (p PrivateKey) Address() ledger.Address {
	return p.PublicKey().Address()
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return PrivateKey(priv)
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) PrivateKey {
	return PrivateKey(ed25519.NewKeyFromSeed(seed))
}

// DeriveKey derives a private key from a master seed following the
// SLIP-0010 ed25519 scheme, for example with path "m/44'/501'/0'".
func DeriveKey(seed []byte, path string) (PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot derive key for path %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}

// DeriveKeyHex is DeriveKey with the master seed given in hex.
func DeriveKeyHex(hexSeed, path string) (PrivateKey, error) {
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot decode seed: %s", err)
	}
	return DeriveKey(seed, path)
}
