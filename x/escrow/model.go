package escrow

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/token"
)

// EscrowLen is the size of the escrow account data.
const EscrowLen = 121

// ClosedBucketName is where closed escrows are remembered.
const ClosedBucketName = "closedesc"

var (
	// ProgramID owns all escrow accounts and signs for their vaults.
	ProgramID = ledger.MustParseAddress("DWR9pMytrCDtpyzJMC65fEVxvVehujvw6J8htPNFffRG")

	escrowSeed    = []byte("escrow")
	discriminator = accountDiscriminator("Escrow")
)

func accountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:8]
}

// Escrow is the state of an open swap.
//
//   offset  size  field
//   0       8     discriminator
//   8       32    maker
//   40      8     seed
//   48      32    mint a
//   80      32    mint b
//   112     8     receive
//   120     1     bump
type Escrow struct {
	Maker   ledger.Address
	Seed    uint64
	MintA   ledger.Address
	MintB   ledger.Address
	Receive uint64
	Bump    uint8
}

func (e *Escrow) Marshal() ([]byte, error) {
	out := make([]byte, EscrowLen)
	copy(out[0:8], discriminator)
	copy(out[8:40], e.Maker)
	binary.LittleEndian.PutUint64(out[40:48], e.Seed)
	copy(out[48:80], e.MintA)
	copy(out[80:112], e.MintB)
	binary.LittleEndian.PutUint64(out[112:120], e.Receive)
	out[120] = e.Bump
	return out, nil
}

func (e *Escrow) Unmarshal(raw []byte) error {
	if len(raw) != EscrowLen {
		return errors.Wrapf(errors.ErrModel, "escrow size %d", len(raw))
	}
	if !bytes.Equal(raw[0:8], discriminator) {
		return errors.Wrap(errors.ErrModel, "not an escrow account")
	}
	e.Maker = append(ledger.Address(nil), raw[8:40]...)
	e.Seed = binary.LittleEndian.Uint64(raw[40:48])
	e.MintA = append(ledger.Address(nil), raw[48:80]...)
	e.MintB = append(ledger.Address(nil), raw[80:112]...)
	e.Receive = binary.LittleEndian.Uint64(raw[112:120])
	e.Bump = raw[120]
	return nil
}

// Validate ensures the escrow is valid.
func (e *Escrow) Validate() error {
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := e.MintA.Validate(); err != nil {
		return errors.Wrap(err, "mint a")
	}
	if err := e.MintB.Validate(); err != nil {
		return errors.Wrap(err, "mint b")
	}
	if e.Receive == 0 {
		return errors.Wrap(errors.ErrAmount, "receive")
	}
	return nil
}

// seeds returns the derivation seeds of the escrow address, bump
// included.
func (e *Escrow) seeds() [][]byte {
	return [][]byte{escrowSeed, e.Maker, ledger.U64Seed(e.Seed), {e.Bump}}
}

// Address re-derives the escrow address from the stored seeds.
func (e *Escrow) Address() (ledger.Address, error) {
	return ledger.CreateProgramAddress(ProgramID, e.seeds()...)
}

// EscrowAddress returns the address of the escrow opened by maker with
// given seed, together with its bump.
func EscrowAddress(maker ledger.Address, seed uint64) (ledger.Address, uint8, error) {
	return ledger.FindProgramAddress(ProgramID, escrowSeed, maker, ledger.U64Seed(seed))
}

// VaultAddress returns the token account holding the deposit of the
// escrow at addr.
func VaultAddress(escrow, mintA ledger.Address) (ledger.Address, error) {
	return token.AssociatedAddress(escrow, mintA)
}

// Outcome tells how an escrow was closed.
type Outcome uint8

const (
	OutcomeTaken Outcome = iota + 1
	OutcomeRefunded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTaken:
		return "taken"
	case OutcomeRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// Closed is kept for every closed escrow address.
type Closed struct {
	Maker   ledger.Address
	Height  int64
	Outcome Outcome
}

var _ orm.Model = (*Closed)(nil)

const closedLen = ledger.AddressLength + 8 + 1

func (c *Closed) Marshal() ([]byte, error) {
	out := make([]byte, closedLen)
	copy(out, c.Maker)
	binary.LittleEndian.PutUint64(out[32:40], uint64(c.Height))
	out[40] = byte(c.Outcome)
	return out, nil
}

func (c *Closed) Unmarshal(raw []byte) error {
	if len(raw) != closedLen {
		return errors.Wrapf(errors.ErrModel, "closed escrow size %d", len(raw))
	}
	c.Maker = append(ledger.Address(nil), raw[:32]...)
	c.Height = int64(binary.LittleEndian.Uint64(raw[32:40]))
	c.Outcome = Outcome(raw[40])
	return nil
}

func (c *Closed) Validate() error {
	if err := c.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	switch c.Outcome {
	case OutcomeTaken, OutcomeRefunded:
	default:
		return errors.Wrapf(errors.ErrModel, "unknown outcome %d", c.Outcome)
	}
	if c.Height < 0 {
		return errors.Wrap(errors.ErrModel, "negative height")
	}
	return nil
}

// ClosedBucket stores closed escrows by escrow address, indexed by
// maker.
type ClosedBucket struct {
	orm.ModelBucket
}

// NewClosedBucket returns the bucket of closed escrows.
func NewClosedBucket() ClosedBucket {
	b := orm.NewModelBucket(ClosedBucketName, &Closed{},
		orm.WithIndex("maker", idxMaker),
	)
	return ClosedBucket{b}
}

func idxMaker(m orm.Model) ([]byte, error) {
	c, ok := m.(*Closed)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only index Closed, got %T", m)
	}
	return c.Maker, nil
}

// IsClosed returns true if the escrow at addr was closed before.
func (b ClosedBucket) IsClosed(db ledger.ReadOnlyKVStore, addr ledger.Address) (bool, error) {
	switch err := b.Has(db, addr); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}
