package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/iov-one/ledger/errors"
	"github.com/jdgcs/ed25519/edwards25519"
)

const (
	// MaxSeeds is the maximum number of seeds accepted by the address
	// derivation, including the bump seed.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32
)

var pdaMarker = []byte("ProgramDerivedAddress")

// ErrOnCurve is returned by CreateProgramAddress when the hashed seeds
// produce a valid ed25519 point. Such an address could have a private
// key and must not be used as a program address.
var ErrOnCurve = errors.Register(15, "address on curve")

// CreateProgramAddress computes the address owned by given program for
// the given seeds.
//
// Program derived addresses are never on the ed25519 curve, so nobody
// can hold a private key for them. Only the program can authorize
// operations on their behalf, by proving it knows the seeds.
func CreateProgramAddress(program Address, seeds ...[]byte) (Address, error) {
	if len(seeds) > MaxSeeds {
		return nil, errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return nil, errors.Wrapf(errors.ErrInput, "seed %d exceeds %d bytes", i, MaxSeedLength)
		}
		_, _ = h.Write(s)
	}
	_, _ = h.Write(program)
	_, _ = h.Write(pdaMarker)

	var pub [32]byte
	copy(pub[:], h.Sum(nil))

	// A valid compressed edwards point means a key pair may exist.
	var A edwards25519.ExtendedGroupElement
	if A.FromBytes(&pub) {
		return nil, ErrOnCurve
	}
	return Address(pub[:]), nil
}

// FindProgramAddress searches for the highest bump seed, starting at 255,
// for which CreateProgramAddress(program, seeds..., [bump]) succeeds. It
// returns the address together with the bump that must be stored to
// re-derive it later.
func FindProgramAddress(program Address, seeds ...[]byte) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return nil, 0, errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	bump := []byte{math.MaxUint8}
	withBump := append(append(make([][]byte, 0, len(seeds)+1), seeds...), bump)
	for {
		addr, err := CreateProgramAddress(program, withBump...)
		switch {
		case err == nil:
			return addr, bump[0], nil
		case !ErrOnCurve.Is(err):
			return nil, 0, err
		}
		if bump[0] == 0 {
			return nil, 0, errors.Wrap(errors.ErrState, "no viable bump seed")
		}
		bump[0]--
	}
}

// U64Seed returns the little endian representation of n, the format
// numeric seeds take in address derivation.
func U64Seed(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}
