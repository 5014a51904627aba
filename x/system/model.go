package system

import (
	"encoding/binary"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// BucketName is where the accounts are stored.
const BucketName = "accounts"

// ProgramID is the owner of all accounts that are not assigned to any
// other program. It is the zero address.
var ProgramID = ledger.Address(make([]byte, ledger.AddressLength))

// Account is the runtime state stored under an address.
type Account struct {
	Lamports uint64
	Owner    ledger.Address
	Data     []byte
}

var _ orm.Model = (*Account)(nil)

const accountHeaderLen = 8 + ledger.AddressLength

// Marshal encodes the lamports (little endian) followed by the owner and
// the data.
func (a *Account) Marshal() ([]byte, error) {
	out := make([]byte, accountHeaderLen+len(a.Data))
	binary.LittleEndian.PutUint64(out, a.Lamports)
	copy(out[8:], a.Owner)
	copy(out[accountHeaderLen:], a.Data)
	return out, nil
}

// Unmarshal is the inverse of Marshal.
func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) < accountHeaderLen {
		return errors.Wrapf(errors.ErrModel, "account too short: %d", len(raw))
	}
	a.Lamports = binary.LittleEndian.Uint64(raw)
	a.Owner = append(ledger.Address(nil), raw[8:accountHeaderLen]...)
	a.Data = append([]byte(nil), raw[accountHeaderLen:]...)
	return nil
}

// Validate ensures the account has an owner.
func (a *Account) Validate() error {
	if err := a.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

// IsSystem returns true if the account is a plain lamport holder.
func (a *Account) IsSystem() bool {
	return a.Owner.Equals(ProgramID) && len(a.Data) == 0
}

// Bucket stores accounts keyed by their address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns the accounts bucket.
func NewBucket() Bucket {
	return Bucket{orm.NewModelBucket(BucketName, &Account{})}
}

// Get returns the account stored at addr or ErrNotFound.
func (b Bucket) Get(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error) {
	var a Account
	if err := b.One(db, addr, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
