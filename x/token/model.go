package token

import (
	"encoding/binary"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	// MintLen is the size of the mint data.
	MintLen = 82
	// AccountLen is the size of the token account data.
	AccountLen = 165
)

var (
	// ProgramID owns all mints and token accounts.
	ProgramID = ledger.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	// AssociatedProgramID is the program associated token account
	// addresses are derived from.
	AssociatedProgramID = ledger.MustParseAddress("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	StateUninitialized AccountState = iota
	StateInitialized
	StateFrozen
)

// Mint describes a token type.
//
//   offset  size  field
//   0       36    mint authority (u32 tag + address)
//   36      8     supply
//   44      1     decimals
//   45      1     is initialized
//   46      36    freeze authority (u32 tag + address)
type Mint struct {
	MintAuthority   ledger.Address
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority ledger.Address
}

func (m *Mint) Marshal() ([]byte, error) {
	out := make([]byte, MintLen)
	putOptionAddress(out[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(out[36:44], m.Supply)
	out[44] = m.Decimals
	out[45] = boolByte(m.IsInitialized)
	putOptionAddress(out[46:82], m.FreezeAuthority)
	return out, nil
}

func (m *Mint) Unmarshal(raw []byte) error {
	if len(raw) != MintLen {
		return errors.Wrapf(errors.ErrInput, "mint data must be %d bytes, got %d", MintLen, len(raw))
	}
	var err error
	if m.MintAuthority, err = optionAddress(raw[0:36]); err != nil {
		return errors.Wrap(err, "mint authority")
	}
	m.Supply = binary.LittleEndian.Uint64(raw[36:44])
	m.Decimals = raw[44]
	if m.IsInitialized, err = byteBool(raw[45]); err != nil {
		return errors.Wrap(err, "is initialized")
	}
	if m.FreezeAuthority, err = optionAddress(raw[46:82]); err != nil {
		return errors.Wrap(err, "freeze authority")
	}
	return nil
}

// Account holds the balance of a single mint.
//
//   offset  size  field
//   0       32    mint
//   32      32    owner
//   64      8     amount
//   72      36    delegate (u32 tag + address)
//   108     1     state
//   109     12    is native (u32 tag + u64)
//   121     8     delegated amount
//   129     36    close authority (u32 tag + address)
type Account struct {
	Mint            ledger.Address
	Owner           ledger.Address
	Amount          uint64
	Delegate        ledger.Address
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  ledger.Address
}

func (a *Account) Marshal() ([]byte, error) {
	out := make([]byte, AccountLen)
	copy(out[0:32], a.Mint)
	copy(out[32:64], a.Owner)
	binary.LittleEndian.PutUint64(out[64:72], a.Amount)
	putOptionAddress(out[72:108], a.Delegate)
	out[108] = byte(a.State)
	if a.IsNative != nil {
		binary.LittleEndian.PutUint32(out[109:113], 1)
		binary.LittleEndian.PutUint64(out[113:121], *a.IsNative)
	}
	binary.LittleEndian.PutUint64(out[121:129], a.DelegatedAmount)
	putOptionAddress(out[129:165], a.CloseAuthority)
	return out, nil
}

func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) != AccountLen {
		return errors.Wrapf(errors.ErrInput, "token account data must be %d bytes, got %d", AccountLen, len(raw))
	}
	a.Mint = append(ledger.Address(nil), raw[0:32]...)
	a.Owner = append(ledger.Address(nil), raw[32:64]...)
	a.Amount = binary.LittleEndian.Uint64(raw[64:72])
	var err error
	if a.Delegate, err = optionAddress(raw[72:108]); err != nil {
		return errors.Wrap(err, "delegate")
	}
	a.State = AccountState(raw[108])
	if a.State > StateFrozen {
		return errors.Wrapf(errors.ErrInput, "unknown state %d", raw[108])
	}
	a.IsNative = nil
	switch binary.LittleEndian.Uint32(raw[109:113]) {
	case 0:
	case 1:
		n := binary.LittleEndian.Uint64(raw[113:121])
		a.IsNative = &n
	default:
		return errors.Wrap(errors.ErrInput, "is native tag")
	}
	a.DelegatedAmount = binary.LittleEndian.Uint64(raw[121:129])
	if a.CloseAuthority, err = optionAddress(raw[129:165]); err != nil {
		return errors.Wrap(err, "close authority")
	}
	return nil
}

func putOptionAddress(out []byte, a ledger.Address) {
	if len(a) == 0 {
		return
	}
	binary.LittleEndian.PutUint32(out, 1)
	copy(out[4:], a)
}

func optionAddress(raw []byte) (ledger.Address, error) {
	switch binary.LittleEndian.Uint32(raw) {
	case 0:
		return nil, nil
	case 1:
		return append(ledger.Address(nil), raw[4:36]...), nil
	default:
		return nil, errors.Wrap(errors.ErrInput, "invalid option tag")
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func byteBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(errors.ErrInput, "invalid bool %d", b)
	}
}

// AssociatedAddress returns the canonical token account address of
// wallet for mint.
func AssociatedAddress(wallet, mint ledger.Address) (ledger.Address, error) {
	addr, _, err := ledger.FindProgramAddress(AssociatedProgramID, wallet, ProgramID, mint)
	return addr, err
}
