package ledger

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/ledger/errors"
	"github.com/mr-tron/base58"
)

// AddressLength is the length of all addresses.
// An address is either an ed25519 public key or a program derived
// address that is guaranteed to not lie on the curve.
const AddressLength = 32

// Bech32Prefix is the human readable part used when an address is
// serialized in bech32 form.
const Bech32Prefix = "ledger"

// Address represents a collision-free, one-way digest of data (usually
// a public key) that can be used to identify a signer or an account.
//
// It will be of size AddressLength
type Address []byte

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// Clone returns a copy of the address that does not share the memory.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	cpy := make(Address, len(a))
	copy(cpy, a)
	return cpy
}

// IsZero returns true if the address holds only zero bytes. The system
// program address is the zero address.
func (a Address) IsZero() bool {
	for _, b := range a {
		if b != 0 {
			return false
		}
	}
	return len(a) == AddressLength
}

// MarshalJSON provides a base58 string for Address
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts any of the formats understood by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	if enc == "" {
		*a = nil
		return nil
	}
	val, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = val
	return nil
}

// Set implements flag.Value so an address can be given as a command line
// argument in any of the formats understood by ParseAddress.
func (a *Address) Set(enc string) error {
	val, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = val
	return nil
}

// ParseAddress accepts address in any of the supported formats and
// returns the address value.
//
//   base58 (default): 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin
//   hex:              hex:0a1b...
//   bech32:           bech32:ledger1...
func ParseAddress(enc string) (Address, error) {
	if enc == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "address")
	}
	chunks := strings.SplitN(enc, ":", 2)
	if len(chunks) == 1 {
		val, err := base58.Decode(enc)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "cannot decode base58 address: %s", err)
		}
		return checkedAddress(val)
	}
	switch format, data := chunks[0], chunks[1]; format {
	case "hex":
		val, err := hex.DecodeString(data)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "cannot decode hex address: %s", err)
		}
		return checkedAddress(val)
	case "bech32":
		hrp, payload, err := bech32.Decode(data)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "cannot decode bech32 address: %s", err)
		}
		if hrp != Bech32Prefix {
			return nil, errors.Wrapf(errors.ErrInput, "invalid bech32 prefix %q", hrp)
		}
		val, err := bech32.ConvertBits(payload, 5, 8, false)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "cannot convert bech32 bits: %s", err)
		}
		return checkedAddress(val)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown address format %q", format)
	}
}

// MustParseAddress is like ParseAddress but panics on error. It should
// only be used for constants and in tests.
func MustParseAddress(enc string) Address {
	a, err := ParseAddress(enc)
	if err != nil {
		panic(err)
	}
	return a
}

func checkedAddress(val []byte) (Address, error) {
	a := Address(val)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// String returns a human readable base58 representation of the address.
func (a Address) String() string {
	if len(a) == 0 {
		return ""
	}
	return base58.Encode(a)
}

// Bech32 returns the bech32 representation of the address using
// Bech32Prefix as the human readable part.
func (a Address) Bech32() (string, error) {
	conv, err := bech32.ConvertBits(a, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "cannot convert bits")
	}
	enc, err := bech32.Encode(Bech32Prefix, conv)
	if err != nil {
		return "", errors.Wrap(err, "cannot encode bech32")
	}
	return enc, nil
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) == 0 {
		return errors.Wrap(errors.ErrEmpty, "address")
	}
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address: invalid length %d", len(a))
	}
	return nil
}
