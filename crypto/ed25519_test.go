package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig, err := private.Sign(msg)
	require.NoError(t, err)
	sig2, err := private.Sign(msg2)
	require.NoError(t, err)

	if bytes.Equal(sig, sig2) {
		t.Fatal("different messages produce the same signature")
	}

	assert.True(t, public.Verify(msg, sig))
	assert.True(t, public.Verify(msg2, sig2))
	assert.False(t, public.Verify(msg, sig2))
	assert.False(t, public.Verify(msg, sig[:10]))

	// a different key cannot verify
	other := GenPrivKeyEd25519().PublicKey()
	assert.False(t, other.Verify(msg, sig))
}

func TestAddressIsPublicKey(t *testing.T) {
	priv := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{7}, 32))
	addr := priv.Address()
	require.NoError(t, addr.Validate())
	assert.Equal(t, []byte(priv.PublicKey()), []byte(addr))
}

func TestDeriveKey(t *testing.T) {
	const seed = "000102030405060708090a0b0c0d0e0f"

	k0, err := DeriveKeyHex(seed, "m/44'/501'/0'")
	require.NoError(t, err)
	k0again, err := DeriveKeyHex(seed, "m/44'/501'/0'")
	require.NoError(t, err)
	k1, err := DeriveKeyHex(seed, "m/44'/501'/1'")
	require.NoError(t, err)

	assert.Equal(t, k0, k0again)
	assert.NotEqual(t, k0, k1)

	_, err = DeriveKeyHex(seed, "m/44/501")
	assert.True(t, errors.ErrInput.Is(err))
	_, err = DeriveKeyHex("zz", "m/0'")
	assert.True(t, errors.ErrInput.Is(err))
}

func TestSLIP10Vector(t *testing.T) {
	// Test vector 1 of SLIP-0010 for ed25519, chain m/0'.
	k, err := DeriveKeyHex("000102030405060708090a0b0c0d0e0f", "m/0'")
	require.NoError(t, err)
	assert.Equal(t,
		"68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3",
		hex.EncodeToString(k[:32]))
}

func TestPublicKeyValidate(t *testing.T) {
	assert.NoError(t, GenPrivKeyEd25519().PublicKey().Validate())
	assert.True(t, errors.ErrInput.Is(PublicKey([]byte{1, 2}).Validate()))
}
