package ledger

import (
	"crypto/ed25519"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProgramAddress(t *testing.T) {
	seedKey := MustParseAddress("SeedPubey1111111111111111111111111111111111")
	program := MustParseAddress("BPFLoader1111111111111111111111111111111111")

	_, err := CreateProgramAddress(program, make([]byte, MaxSeedLength+1))
	assert.True(t, errors.ErrInput.Is(err))
	_, err = CreateProgramAddress(program, []byte("short seed"), make([]byte, MaxSeedLength+1))
	assert.True(t, errors.ErrInput.Is(err))
	_, err = CreateProgramAddress(program, make([][]byte, MaxSeeds+1)...)
	assert.True(t, errors.ErrInput.Is(err))

	_, err = CreateProgramAddress(program, make([]byte, MaxSeedLength))
	assert.NoError(t, err)

	cases := map[string]struct {
		want  string
		seeds [][]byte
	}{
		"empty and one": {
			want:  "3gF2KMe9KiC6FNVBmfg9i267aMPvK37FewCip4eGBFcT",
			seeds: [][]byte{{}, {1}},
		},
		"unicode": {
			want:  "7ytmC1nT1xY4RfxCV2ZgyA7UakC93do5ZdyhdF3EtPj7",
			seeds: [][]byte{[]byte("☉")},
		},
		"two words": {
			want:  "HwRVBufQ4haG5XSgpspwKtNd3PC9GM9m1196uJW36vds",
			seeds: [][]byte{[]byte("Talking"), []byte("Squirrels")},
		},
		"public key": {
			want:  "GUs5qLUfsEHkcMB9T38vjr18ypEhRuNWiePW2LoK4E3K",
			seeds: [][]byte{seedKey},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			addr, err := CreateProgramAddress(program, tc.seeds...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, addr.String())
		})
	}

	a, err := CreateProgramAddress(program, []byte("Talking"))
	require.NoError(t, err)
	b, err := CreateProgramAddress(program, []byte("Talking"), []byte("Squirrels"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFindProgramAddress(t *testing.T) {
	for i := 0; i < 200; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		program := Address(pub)

		addr, bump, err := FindProgramAddress(program, []byte("Lil'"), []byte("Bits"))
		require.NoError(t, err)

		// The bump must re-derive the very same address.
		again, err := CreateProgramAddress(program, []byte("Lil'"), []byte("Bits"), []byte{bump})
		require.NoError(t, err)
		assert.Equal(t, addr, again)

		// Derived addresses are never valid curve points.
		var pt [32]byte
		copy(pt[:], addr)
		var A edwards25519.ExtendedGroupElement
		assert.False(t, A.FromBytes(&pt))

		// All higher bumps must be on the curve, otherwise the search
		// did not return the first viable one.
		for b := int(bump) + 1; b <= 255; b++ {
			_, err := CreateProgramAddress(program, []byte("Lil'"), []byte("Bits"), []byte{byte(b)})
			assert.True(t, ErrOnCurve.Is(err))
		}
	}
}

func TestFindProgramAddressTooManySeeds(t *testing.T) {
	program := MustParseAddress("BPFLoader1111111111111111111111111111111111")
	_, _, err := FindProgramAddress(program, make([][]byte, MaxSeeds)...)
	assert.True(t, errors.ErrInput.Is(err))
}

func TestU64Seed(t *testing.T) {
	assert.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, U64Seed(7))
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, U64Seed(0x0102030405060708))
}
