package sigs

import (
	"encoding/binary"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// BucketName is where we store the nonces
const BucketName = "sigs"

// maxSequenceValue is the greatest nonce a client can safely represent
// (Number.MAX_SAFE_INTEGER).
const maxSequenceValue = (1 << 53) - 1

// UserData holds the replay protection state of a single signer.
type UserData struct {
	Pubkey   crypto.PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// Validate ensures the stored state is consistent.
func (u *UserData) Validate() error {
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if u.Sequence > 0 && u.Pubkey == nil {
		return errors.Wrap(ErrInvalidSequence, "needs Pubkey")
	}
	if u.Pubkey != nil {
		return u.Pubkey.Validate()
	}
	return nil
}

// Marshal encodes the sequence as big endian followed by the public key.
func (u *UserData) Marshal() ([]byte, error) {
	out := make([]byte, 8+len(u.Pubkey))
	binary.BigEndian.PutUint64(out, uint64(u.Sequence))
	copy(out[8:], u.Pubkey)
	return out, nil
}

// Unmarshal is the inverse of Marshal.
func (u *UserData) Unmarshal(raw []byte) error {
	if len(raw) < 8 {
		return errors.Wrapf(errors.ErrModel, "user data too short: %d", len(raw))
	}
	u.Sequence = int64(binary.BigEndian.Uint64(raw))
	u.Pubkey = nil
	if len(raw) > 8 {
		u.Pubkey = append(crypto.PublicKey(nil), raw[8:]...)
	}
	return nil
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", u.Sequence, expected)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// SetPubkey sets the key on first use. It is illegal to change an
// already set key.
func (u *UserData) SetPubkey(pubkey crypto.PublicKey) error {
	if u.Pubkey != nil {
		return errors.Wrap(errors.ErrImmutable, "pubkey already set")
	}
	u.Pubkey = pubkey
	return nil
}

// Bucket stores UserData keyed by the signer address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns the nonce bucket.
func NewBucket() Bucket {
	return Bucket{orm.NewModelBucket(BucketName, &UserData{})}
}

// GetOrCreate loads the user data of the signer, or returns a fresh
// record when the signer was never seen.
func (b Bucket) GetOrCreate(db ledger.ReadOnlyKVStore, pubkey crypto.PublicKey) (*UserData, error) {
	var u UserData
	switch err := b.One(db, pubkey.Address(), &u); {
	case err == nil:
		return &u, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}
